package suppliers

import (
	"context"
	"errors"
	"fmt"

	"stayledger-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSupplierNotFound = errors.New("Supplier not found in database")
	ErrValidation       = errors.New("Invalid supplier payload")
)

type Service struct {
	DB *gorm.DB
}

// CreateInput is the supplier contact card.
type CreateInput struct {
	Name    string `json:"name"`
	PhoneNo string `json:"phoneNo"`
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Supplier, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	supplier := models.Supplier{
		Name:     input.Name,
		PhoneNo:  input.PhoneNo,
		Projects: datatypes.NewJSONSlice([]models.ProjectSummary{}),
	}
	if err := s.DB.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Service) List(ctx context.Context) ([]models.Supplier, error) {
	var list []models.Supplier
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, supplierID uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.DB.WithContext(ctx).Where("supplier_id = ?", supplierID).First(&supplier).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// Summary is the flat projection served to supplier pickers (select
// name/phone/id in the Express route).
type Summary struct {
	SupplierID uuid.UUID `json:"supplier_id"`
	Name       string    `json:"name"`
	PhoneNo    string    `json:"phoneNo"`
}

func (s *Service) ListSummaries(ctx context.Context) ([]Summary, error) {
	var list []Summary
	if err := s.DB.WithContext(ctx).Model(&models.Supplier{}).
		Select("supplier_id", "name", "phone_no").
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
