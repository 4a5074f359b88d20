package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EmployeePayment is one payment made to a project employee.
type EmployeePayment struct {
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// Employee is embedded in a project (Express subdocument).
type Employee struct {
	EmployeeID           uuid.UUID         `json:"employee_id"`
	Name                 string            `json:"name"`
	PhoneNo              string            `json:"phoneNo"`
	RoleOrMaterial       string            `json:"roleOrMaterial"`
	SalaryOrTotalPayment float64           `json:"salaryOrTotalPayment"`
	Payments             []EmployeePayment `json:"payments"`
}

// SupplierSummary is the project-side half of a project↔supplier link.
// Materials and Payment accumulate across linking events.
type SupplierSummary struct {
	SupplierID uuid.UUID `json:"supplierId"`
	Name       string    `json:"name"`
	PhoneNo    string    `json:"phoneNo"`
	Materials  []string  `json:"materials"`
	Payment    float64   `json:"payment"`
}

// Project matches the Express Project model: header fields plus embedded
// employees and supplier summaries.
type Project struct {
	ProjectID   uuid.UUID                            `gorm:"column:project_id;type:uuid;primaryKey" json:"project_id"`
	Heading     string                               `gorm:"column:heading;not null" json:"heading"`
	Date        *time.Time                           `gorm:"column:date" json:"date"`
	Description string                               `gorm:"column:description" json:"description"`
	Employees   datatypes.JSONSlice[Employee]        `gorm:"column:employees;type:jsonb" json:"employees"`
	Suppliers   datatypes.JSONSlice[SupplierSummary] `gorm:"column:suppliers;type:jsonb" json:"suppliers"`
	CreatedAt   time.Time                            `json:"createdAt"`
	UpdatedAt   time.Time                            `json:"updatedAt"`
}

func (Project) TableName() string {
	return "Projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ProjectID == uuid.Nil {
		p.ProjectID = uuid.New()
	}
	return nil
}
