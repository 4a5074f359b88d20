package records

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stayledger-backend/internal/lifecycle"
	"stayledger-backend/internal/models"
	"stayledger-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service owns the three record collections: Active, Archived, Retired.
// Transitions are copy-then-delete; a failed delete after a successful copy
// is logged as a partial failure and never rolled back.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IntakeInput is the intake form payload (formModels.js shape).
type IntakeInput struct {
	SrNo                 int           `json:"srNo"`
	Name                 string        `json:"name"`
	JoiningDate          *time.Time    `json:"joiningDate"`
	RoomNo               string        `json:"roomNo"`
	FloorNo              string        `json:"floorNo"`
	BedNo                string        `json:"bedNo"`
	DepositAmount        float64       `json:"depositAmount"`
	Address              string        `json:"address"`
	PhoneNo              string        `json:"phoneNo"`
	RelativeAddress1     string        `json:"relativeAddress1"`
	RelativeAddress2     string        `json:"relativeAddress2"`
	CompanyAddress       string        `json:"companyAddress"`
	DateOfJoiningCollege *time.Time    `json:"dateOfJoiningCollege"`
	DOB                  *time.Time    `json:"dob"`
	Rents                []models.Rent `json:"rents"`
}

// Intake validates and stores a new active record.
func (s *Service) Intake(ctx context.Context, input IntakeInput) (*models.TenancyRecord, error) {
	if !validation.IsValidName(input.Name) {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.PhoneNo != "" && !validation.IsValidPhone(input.PhoneNo) {
		return nil, fmt.Errorf("%w: invalid phone number", ErrValidation)
	}
	rec := models.TenancyRecord{
		SrNo:                 input.SrNo,
		Name:                 input.Name,
		JoiningDate:          input.JoiningDate,
		RoomNo:               input.RoomNo,
		FloorNo:              input.FloorNo,
		BedNo:                input.BedNo,
		DepositAmount:        input.DepositAmount,
		Address:              input.Address,
		PhoneNo:              input.PhoneNo,
		RelativeAddress1:     input.RelativeAddress1,
		RelativeAddress2:     input.RelativeAddress2,
		CompanyAddress:       input.CompanyAddress,
		DateOfJoiningCollege: input.DateOfJoiningCollege,
		DOB:                  input.DOB,
		Rents:                datatypes.NewJSONSlice(dedupeRents(input.Rents)),
	}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// dedupeRents keeps the last entry per month key, preserving first-seen order.
func dedupeRents(rents []models.Rent) []models.Rent {
	out := make([]models.Rent, 0, len(rents))
	for _, r := range rents {
		key := lifecycle.MonthKey(r.Date)
		replaced := false
		for i := range out {
			if lifecycle.MonthKey(out[i].Date) == key {
				out[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, r)
		}
	}
	return out
}

// ListActive returns all active records.
func (s *Service) ListActive(ctx context.Context) ([]models.TenancyRecord, error) {
	var recs []models.TenancyRecord
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// ProfilePatch carries optional profile field updates (updateProfile).
type ProfilePatch struct {
	Name             *string    `json:"name"`
	RoomNo           *string    `json:"roomNo"`
	FloorNo          *string    `json:"floorNo"`
	BedNo            *string    `json:"bedNo"`
	DepositAmount    *float64   `json:"depositAmount"`
	Address          *string    `json:"address"`
	PhoneNo          *string    `json:"phoneNo"`
	RelativeAddress1 *string    `json:"relativeAddress1"`
	RelativeAddress2 *string    `json:"relativeAddress2"`
	CompanyAddress   *string    `json:"companyAddress"`
	JoiningDate      *time.Time `json:"joiningDate"`
	DOB              *time.Time `json:"dob"`
}

// UpdateProfile applies a partial update to an active record.
func (s *Service) UpdateProfile(ctx context.Context, recordID uuid.UUID, patch ProfilePatch) (*models.TenancyRecord, error) {
	rec, err := s.findActive(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if !validation.IsValidName(*patch.Name) {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		rec.Name = *patch.Name
	}
	if patch.PhoneNo != nil {
		if *patch.PhoneNo != "" && !validation.IsValidPhone(*patch.PhoneNo) {
			return nil, fmt.Errorf("%w: invalid phone number", ErrValidation)
		}
		rec.PhoneNo = *patch.PhoneNo
	}
	if patch.RoomNo != nil {
		rec.RoomNo = *patch.RoomNo
	}
	if patch.FloorNo != nil {
		rec.FloorNo = *patch.FloorNo
	}
	if patch.BedNo != nil {
		rec.BedNo = *patch.BedNo
	}
	if patch.DepositAmount != nil {
		rec.DepositAmount = *patch.DepositAmount
	}
	if patch.Address != nil {
		rec.Address = *patch.Address
	}
	if patch.RelativeAddress1 != nil {
		rec.RelativeAddress1 = *patch.RelativeAddress1
	}
	if patch.RelativeAddress2 != nil {
		rec.RelativeAddress2 = *patch.RelativeAddress2
	}
	if patch.CompanyAddress != nil {
		rec.CompanyAddress = *patch.CompanyAddress
	}
	if patch.JoiningDate != nil {
		rec.JoiningDate = patch.JoiningDate
	}
	if patch.DOB != nil {
		rec.DOB = patch.DOB
	}
	if err := s.DB.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// UpsertRent adds or replaces the rent entry for the month of date. At most
// one entry exists per Mon-YY key; a second write for the same month wins.
func (s *Service) UpsertRent(ctx context.Context, recordID uuid.UUID, amount float64, date time.Time) (*models.TenancyRecord, error) {
	rec, err := s.findActive(ctx, recordID)
	if err != nil {
		return nil, err
	}
	key := lifecycle.MonthKey(date)
	rents := []models.Rent(rec.Rents)
	replaced := false
	for i := range rents {
		if lifecycle.MonthKey(rents[i].Date) == key {
			rents[i] = models.Rent{RentAmount: amount, Date: date}
			replaced = true
			break
		}
	}
	if !replaced {
		rents = append(rents, models.Rent{RentAmount: amount, Date: date})
	}
	rec.Rents = datatypes.NewJSONSlice(rents)
	if err := s.DB.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// RemoveRent deletes the rent entry matching monthYear (Mon-YY), leaving
// other months untouched.
func (s *Service) RemoveRent(ctx context.Context, recordID uuid.UUID, monthYear string) (*models.TenancyRecord, error) {
	rec, err := s.findActive(ctx, recordID)
	if err != nil {
		return nil, err
	}
	rents := []models.Rent(rec.Rents)
	kept := make([]models.Rent, 0, len(rents))
	for _, r := range rents {
		if lifecycle.MonthKey(r.Date) != monthYear {
			kept = append(kept, r)
		}
	}
	rec.Rents = datatypes.NewJSONSlice(kept)
	if err := s.DB.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// SetLeaveDate stores the leave date and, when it is already due, archives
// the record on the same request (processLeave dual path). Returns whether
// the record was archived.
func (s *Service) SetLeaveDate(ctx context.Context, recordID uuid.UUID, leaveDate, referenceDate time.Time) (bool, *models.TenancyRecord, error) {
	rec, err := s.findActive(ctx, recordID)
	if err != nil {
		return false, nil, err
	}
	day := lifecycle.DateOnly(leaveDate)
	rec.LeaveDate = &day

	if lifecycle.Decide(leaveDate, referenceDate) == lifecycle.ScheduleForLater {
		if err := s.DB.WithContext(ctx).Save(rec).Error; err != nil {
			return false, nil, err
		}
		return false, rec, nil
	}

	if err := s.archiveRecord(ctx, rec); err != nil {
		return false, nil, err
	}
	return true, rec, nil
}

// archiveRecord copies the record into Archived storage, then deletes the
// active row. A delete failure after a successful copy leaves the record in
// both tables; that is logged and accepted.
func (s *Service) archiveRecord(ctx context.Context, rec *models.TenancyRecord) error {
	archived := models.ArchivedRecord{TenancyRecord: *rec}
	if err := s.DB.WithContext(ctx).Create(&archived).Error; err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Where("record_id = ?", rec.RecordID).Delete(&models.TenancyRecord{})
	if res.Error != nil {
		log.Error().Err(res.Error).
			Str("record_id", rec.RecordID.String()).
			Str("succeeded", "archive copy").
			Msg("Partial failure: active delete failed after archive copy")
		return res.Error
	}
	// RowsAffected 0: a concurrent sweep or retire already removed the row.
	return nil
}

// Retire snapshots the record into Retired storage, then deletes the active
// row (deleteForm → DuplicateForm).
func (s *Service) Retire(ctx context.Context, recordID uuid.UUID) (*models.RetiredRecord, error) {
	rec, err := s.findActive(ctx, recordID)
	if err != nil {
		return nil, err
	}
	snapshot, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	retired := models.RetiredRecord{
		OriginalRecordID: rec.RecordID,
		Snapshot:         datatypes.JSON(snapshot),
		RetiredAt:        s.now(),
	}
	if err := s.DB.WithContext(ctx).Create(&retired).Error; err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Where("record_id = ?", rec.RecordID).Delete(&models.TenancyRecord{})
	if res.Error != nil {
		log.Error().Err(res.Error).
			Str("record_id", rec.RecordID.String()).
			Str("retired_id", retired.RetiredID.String()).
			Str("succeeded", "retired copy").
			Msg("Partial failure: active delete failed after retired copy")
		return nil, res.Error
	}
	return &retired, nil
}

// RetiredEntry pairs a retired audit row with the resolved original record.
// The original is deleted on retire, so Original is expected to be nil; it
// only resolves when a delete half-failed and the active row survived.
type RetiredEntry struct {
	models.RetiredRecord
	Original *models.TenancyRecord `json:"original,omitempty"`
}

// ListRetired returns all retired entries with back-references resolved
// best-effort.
func (s *Service) ListRetired(ctx context.Context) ([]RetiredEntry, error) {
	var retired []models.RetiredRecord
	if err := s.DB.WithContext(ctx).Order("retired_at DESC").Find(&retired).Error; err != nil {
		return nil, err
	}
	entries := make([]RetiredEntry, 0, len(retired))
	for _, r := range retired {
		entry := RetiredEntry{RetiredRecord: r}
		var orig models.TenancyRecord
		err := s.DB.WithContext(ctx).Where("record_id = ?", r.OriginalRecordID).First(&orig).Error
		if err == nil {
			entry.Original = &orig
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Restore moves an archived record back to Active under its original id,
// then deletes the archived copy. If the id is somehow already active the
// insert fails and the archived copy stays put.
func (s *Service) Restore(ctx context.Context, archivedID uuid.UUID) (*models.TenancyRecord, error) {
	var archived models.ArchivedRecord
	if err := s.DB.WithContext(ctx).Where("record_id = ?", archivedID).First(&archived).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrArchivedNotFound
		}
		return nil, err
	}
	restored := archived.TenancyRecord
	restored.CreatedAt = time.Time{}
	restored.UpdatedAt = time.Time{}
	if err := s.DB.WithContext(ctx).Create(&restored).Error; err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Where("record_id = ?", archivedID).Delete(&models.ArchivedRecord{})
	if res.Error != nil {
		log.Error().Err(res.Error).
			Str("record_id", archivedID.String()).
			Str("succeeded", "active copy").
			Msg("Partial failure: archived delete failed after restore")
		return nil, res.Error
	}
	return &restored, nil
}

// ListArchived returns all archived records.
func (s *Service) ListArchived(ctx context.Context) ([]models.ArchivedRecord, error) {
	var recs []models.ArchivedRecord
	if err := s.DB.WithContext(ctx).Order("leave_date DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// GetArchived returns one archived record by id.
func (s *Service) GetArchived(ctx context.Context, archivedID uuid.UUID) (*models.ArchivedRecord, error) {
	var rec models.ArchivedRecord
	if err := s.DB.WithContext(ctx).Where("record_id = ?", archivedID).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrArchivedNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *Service) findActive(ctx context.Context, recordID uuid.UUID) (*models.TenancyRecord, error) {
	var rec models.TenancyRecord
	if err := s.DB.WithContext(ctx).Where("record_id = ?", recordID).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}
