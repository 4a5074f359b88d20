package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProjectSummary is the supplier-side mirror of Project.Suppliers. The two
// sides are stored independently but must total the same payments.
type ProjectSummary struct {
	ProjectID   uuid.UUID `json:"projectId"`
	ProjectName string    `json:"projectName"`
	Materials   []string  `json:"materials"`
	Payment     float64   `json:"payment"`
}

// Supplier matches the Express Supplier model.
type Supplier struct {
	SupplierID uuid.UUID                           `gorm:"column:supplier_id;type:uuid;primaryKey" json:"supplier_id"`
	Name       string                              `gorm:"column:name;not null" json:"name"`
	PhoneNo    string                              `gorm:"column:phone_no" json:"phoneNo"`
	Projects   datatypes.JSONSlice[ProjectSummary] `gorm:"column:projects;type:jsonb" json:"projects"`
	CreatedAt  time.Time                           `json:"createdAt"`
	UpdatedAt  time.Time                           `json:"updatedAt"`
}

func (Supplier) TableName() string {
	return "Suppliers"
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.SupplierID == uuid.Nil {
		s.SupplierID = uuid.New()
	}
	return nil
}
