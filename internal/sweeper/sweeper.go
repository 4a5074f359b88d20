package sweeper

import (
	"context"
	"time"

	"stayledger-backend/internal/lifecycle"
	"stayledger-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Sweeper moves active records with due leave dates into Archived storage.
// One failed record never aborts the batch.
type Sweeper struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run archives every active record whose leave date is due-or-overdue
// relative to referenceDate and reports how many were archived. Per-record
// failures are logged and skipped.
func (s *Sweeper) Run(ctx context.Context, referenceDate time.Time) (int, error) {
	ref := lifecycle.DateOnly(referenceDate)

	var due []models.TenancyRecord
	if err := s.DB.WithContext(ctx).
		Where("leave_date IS NOT NULL AND leave_date <= ?", ref).
		Find(&due).Error; err != nil {
		return 0, err
	}

	archived := 0
	for _, rec := range due {
		if !lifecycle.IsDue(rec, ref) {
			continue
		}
		if err := s.archiveOne(ctx, rec); err != nil {
			log.Error().Err(err).
				Str("record_id", rec.RecordID.String()).
				Msg("Sweep: failed to archive record, continuing")
			continue
		}
		archived++
	}
	log.Info().Int("archived", archived).Str("reference_date", ref.Format("2006-01-02")).Msg("Sweep completed")
	return archived, nil
}

// archiveOne copies then deletes. A delete that affects zero rows means a
// concurrent retire or manual archive won the race; that counts as done.
func (s *Sweeper) archiveOne(ctx context.Context, rec models.TenancyRecord) error {
	archived := models.ArchivedRecord{TenancyRecord: rec}
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
	return nil
}
