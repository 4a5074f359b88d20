package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Link journal states. A row is created pending, advanced to project_applied
// once the project-side summary is saved, and completed once the supplier
// mirror is saved. Rows stuck between states are retried by the reconciler;
// after too many attempts they are parked as failed for manual cleanup.
const (
	LinkStatePending        = "pending"
	LinkStateProjectApplied = "project_applied"
	LinkStateCompleted      = "completed"
	LinkStateFailed         = "failed"
)

// LinkJournal records one project↔supplier linking event. The two summary
// writes are not transactional; this row is the durable trace of which half
// landed.
type LinkJournal struct {
	JournalID  uuid.UUID      `gorm:"column:journal_id;type:uuid;primaryKey" json:"journal_id"`
	ProjectID  uuid.UUID      `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	SupplierID uuid.UUID      `gorm:"column:supplier_id;type:uuid;not null;index" json:"supplier_id"`
	Materials  datatypes.JSON `gorm:"column:materials;type:jsonb" json:"materials"`
	Payment    float64        `gorm:"column:payment;type:decimal(18,2)" json:"payment"`
	State      string         `gorm:"column:state;type:varchar(20);not null;default:'pending';index" json:"state"`
	Attempts   int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastError  string         `gorm:"column:last_error" json:"last_error,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (LinkJournal) TableName() string {
	return "LinkJournal"
}

func (j *LinkJournal) BeforeCreate(tx *gorm.DB) error {
	if j.JournalID == uuid.Nil {
		j.JournalID = uuid.New()
	}
	return nil
}
