package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Rent is one month's rent entry. Entries are keyed by month (Mon-YY); the
// records service keeps at most one entry per month.
type Rent struct {
	RentAmount float64   `json:"rentAmount"`
	Date       time.Time `json:"date"`
}

// TenancyRecord matches the intake form (formModels.js). Active and Archived
// share this shape; ArchivedRecord embeds it with its own table.
type TenancyRecord struct {
	RecordID             uuid.UUID                  `gorm:"column:record_id;type:uuid;primaryKey" json:"record_id"`
	SrNo                 int                        `gorm:"column:sr_no" json:"srNo"`
	Name                 string                     `gorm:"column:name;not null" json:"name"`
	JoiningDate          *time.Time                 `gorm:"column:joining_date" json:"joiningDate"`
	RoomNo               string                     `gorm:"column:room_no" json:"roomNo"`
	FloorNo              string                     `gorm:"column:floor_no" json:"floorNo"`
	BedNo                string                     `gorm:"column:bed_no" json:"bedNo"`
	DepositAmount        float64                    `gorm:"column:deposit_amount;type:decimal(18,2)" json:"depositAmount"`
	Address              string                     `gorm:"column:address" json:"address"`
	PhoneNo              string                     `gorm:"column:phone_no" json:"phoneNo"`
	RelativeAddress1     string                     `gorm:"column:relative_address1" json:"relativeAddress1"`
	RelativeAddress2     string                     `gorm:"column:relative_address2" json:"relativeAddress2"`
	CompanyAddress       string                     `gorm:"column:company_address" json:"companyAddress"`
	DateOfJoiningCollege *time.Time                 `gorm:"column:date_of_joining_college" json:"dateOfJoiningCollege"`
	DOB                  *time.Time                 `gorm:"column:dob" json:"dob"`
	Rents                datatypes.JSONSlice[Rent]  `gorm:"column:rents;type:jsonb" json:"rents"`
	LeaveDate            *time.Time                 `gorm:"column:leave_date" json:"leaveDate"`
	CreatedAt            time.Time                  `json:"createdAt"`
	UpdatedAt            time.Time                  `json:"updatedAt"`
}

func (TenancyRecord) TableName() string {
	return "TenancyRecords"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (r *TenancyRecord) BeforeCreate(tx *gorm.DB) error {
	if r.RecordID == uuid.Nil {
		r.RecordID = uuid.New()
	}
	return nil
}

// ArchivedRecord is a TenancyRecord whose leave date came due, moved to its
// own table by copy-then-delete. Same record_id as the active row it replaced.
type ArchivedRecord struct {
	TenancyRecord `gorm:"embedded"`
}

func (ArchivedRecord) TableName() string {
	return "ArchivedRecords"
}

// RetiredRecord is the audit copy written before an operator delete
// (DuplicateForm in the Express app). The back-reference is historical only;
// the original row is gone once the delete lands.
type RetiredRecord struct {
	RetiredID        uuid.UUID      `gorm:"column:retired_id;type:uuid;primaryKey" json:"retired_id"`
	OriginalRecordID uuid.UUID      `gorm:"column:original_record_id;type:uuid;not null" json:"originalRecordId"`
	Snapshot         datatypes.JSON `gorm:"column:snapshot;type:jsonb;not null" json:"formData"`
	RetiredAt        time.Time      `gorm:"column:retired_at;not null" json:"deletedAt"`
}

func (RetiredRecord) TableName() string {
	return "RetiredRecords"
}

func (r *RetiredRecord) BeforeCreate(tx *gorm.DB) error {
	if r.RetiredID == uuid.Nil {
		r.RetiredID = uuid.New()
	}
	return nil
}
