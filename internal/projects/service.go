package projects

import (
	"context"
	"fmt"
	"time"

	"stayledger-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// CreateInput is the project header (routes/Project.js POST /emp/projects).
type CreateInput struct {
	Heading     string     `json:"heading"`
	Date        *time.Time `json:"date"`
	Description string     `json:"description"`
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Project, error) {
	if input.Heading == "" {
		return nil, fmt.Errorf("%w: heading is required", ErrValidation)
	}
	project := models.Project{
		Heading:     input.Heading,
		Date:        input.Date,
		Description: input.Description,
		Employees:   datatypes.NewJSONSlice([]models.Employee{}),
		Suppliers:   datatypes.NewJSONSlice([]models.SupplierSummary{}),
	}
	if err := s.DB.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Service) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Service) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// EmployeeInput adds one embedded employee to a project.
type EmployeeInput struct {
	Name                 string  `json:"name"`
	PhoneNo              string  `json:"phoneNo"`
	RoleOrMaterial       string  `json:"roleOrMaterial"`
	SalaryOrTotalPayment float64 `json:"salaryOrTotalPayment"`
}

func (s *Service) AddEmployee(ctx context.Context, projectID uuid.UUID, input EmployeeInput) (*models.Project, error) {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: employee name is required", ErrValidation)
	}
	employees := []models.Employee(project.Employees)
	employees = append(employees, models.Employee{
		EmployeeID:           uuid.New(),
		Name:                 input.Name,
		PhoneNo:              input.PhoneNo,
		RoleOrMaterial:       input.RoleOrMaterial,
		SalaryOrTotalPayment: input.SalaryOrTotalPayment,
		Payments:             []models.EmployeePayment{},
	})
	project.Employees = datatypes.NewJSONSlice(employees)
	if err := s.DB.WithContext(ctx).Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// PaymentInput records one payment to an embedded employee.
type PaymentInput struct {
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

func (s *Service) AddEmployeePayment(ctx context.Context, projectID, employeeID uuid.UUID, input PaymentInput) (*models.Project, error) {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	employees := []models.Employee(project.Employees)
	found := false
	for i := range employees {
		if employees[i].EmployeeID == employeeID {
			employees[i].Payments = append(employees[i].Payments, models.EmployeePayment{
				Amount:      input.Amount,
				Date:        input.Date,
				Description: input.Description,
			})
			found = true
			break
		}
	}
	if !found {
		return nil, ErrEmployeeNotFound
	}
	project.Employees = datatypes.NewJSONSlice(employees)
	if err := s.DB.WithContext(ctx).Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}
