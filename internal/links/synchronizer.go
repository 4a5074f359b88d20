package links

import (
	"context"
	"encoding/json"
	"time"

	"stayledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultMaxAttempts = 5

// Service keeps the two denormalized sides of a project↔supplier link in
// step. The two saves are not transactional: each linking event is journaled
// first, and the journal drives compensating retries when the second save
// fails (see Reconcile).
type Service struct {
	DB *gorm.DB
	// MaxAttempts before an incomplete link is parked as failed.
	MaxAttempts int
	// Grace holds back reconciliation of journal rows younger than this, so
	// in-flight requests are not retried underneath themselves.
	Grace time.Duration
}

// LinkResult carries both aggregates after a successful link.
type LinkResult struct {
	Project  *models.Project  `json:"project"`
	Supplier *models.Supplier `json:"supplier"`
}

// Link merges materials and payment into both summary sides. The operation
// is additive by design: linking the same pair twice appends the materials
// twice and doubles the accumulated payment.
func (s *Service) Link(ctx context.Context, projectID, supplierID uuid.UUID, materials []string, payment float64) (*LinkResult, error) {
	if projectID == uuid.Nil || supplierID == uuid.Nil {
		return nil, ErrInvalidIdentifier
	}

	// Both aggregates must exist before anything is written.
	var supplier models.Supplier
	if err := s.DB.WithContext(ctx).Where("supplier_id = ?", supplierID).First(&supplier).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}
	var project models.Project
	if err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	materialsJSON, _ := json.Marshal(materials)
	journal := models.LinkJournal{
		ProjectID:  projectID,
		SupplierID: supplierID,
		Materials:  datatypes.JSON(materialsJSON),
		Payment:    payment,
		State:      models.LinkStatePending,
	}
	if err := s.DB.WithContext(ctx).Create(&journal).Error; err != nil {
		return nil, err
	}

	// Side A: project summary.
	applyProjectSide(&project, &supplier, materials, payment)
	if err := s.DB.WithContext(ctx).Save(&project).Error; err != nil {
		s.recordFailure(ctx, &journal, err)
		return nil, err
	}
	journal.State = models.LinkStateProjectApplied
	if err := s.DB.WithContext(ctx).Save(&journal).Error; err != nil {
		return nil, err
	}

	// Side B: supplier mirror. A failure here leaves the link asymmetric;
	// the journal row stays at project_applied for the reconciler.
	applySupplierSide(&supplier, &project, materials, payment)
	if err := s.DB.WithContext(ctx).Save(&supplier).Error; err != nil {
		log.Error().Err(err).
			Str("project_id", projectID.String()).
			Str("supplier_id", supplierID.String()).
			Str("journal_id", journal.JournalID.String()).
			Str("succeeded", "project side").
			Msg("Partial failure: supplier mirror save failed after project save")
		s.recordFailure(ctx, &journal, err)
		return nil, err
	}

	journal.State = models.LinkStateCompleted
	if err := s.DB.WithContext(ctx).Save(&journal).Error; err != nil {
		return nil, err
	}
	return &LinkResult{Project: &project, Supplier: &supplier}, nil
}

func (s *Service) recordFailure(ctx context.Context, journal *models.LinkJournal, cause error) {
	journal.Attempts++
	journal.LastError = cause.Error()
	if err := s.DB.WithContext(ctx).Save(journal).Error; err != nil {
		log.Error().Err(err).Str("journal_id", journal.JournalID.String()).Msg("Failed to update link journal")
	}
}

// applyProjectSide merges into Project.Suppliers (append materials, add
// payment; create the summary on first link).
func applyProjectSide(project *models.Project, supplier *models.Supplier, materials []string, payment float64) {
	summaries := []models.SupplierSummary(project.Suppliers)
	for i := range summaries {
		if summaries[i].SupplierID == supplier.SupplierID {
			summaries[i].Materials = append(summaries[i].Materials, materials...)
			summaries[i].Payment += payment
			project.Suppliers = datatypes.NewJSONSlice(summaries)
			return
		}
	}
	summaries = append(summaries, models.SupplierSummary{
		SupplierID: supplier.SupplierID,
		Name:       supplier.Name,
		PhoneNo:    supplier.PhoneNo,
		Materials:  append([]string{}, materials...),
		Payment:    payment,
	})
	project.Suppliers = datatypes.NewJSONSlice(summaries)
}

// applySupplierSide mirrors applyProjectSide on Supplier.Projects.
func applySupplierSide(supplier *models.Supplier, project *models.Project, materials []string, payment float64) {
	summaries := []models.ProjectSummary(supplier.Projects)
	for i := range summaries {
		if summaries[i].ProjectID == project.ProjectID {
			summaries[i].Materials = append(summaries[i].Materials, materials...)
			summaries[i].Payment += payment
			supplier.Projects = datatypes.NewJSONSlice(summaries)
			return
		}
	}
	summaries = append(summaries, models.ProjectSummary{
		ProjectID:   project.ProjectID,
		ProjectName: project.Heading,
		Materials:   append([]string{}, materials...),
		Payment:     payment,
	})
	supplier.Projects = datatypes.NewJSONSlice(summaries)
}

// Reconcile retries journal rows stuck between states: pending rows get the
// whole link re-driven, project_applied rows get only the supplier mirror.
// Rows whose aggregates disappeared, or that exhaust their attempts, are
// parked as failed and logged for manual reconciliation. Returns how many
// rows were completed.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	cutoff := time.Now().Add(-s.Grace)

	var stuck []models.LinkJournal
	if err := s.DB.WithContext(ctx).
		Where("state IN ? AND updated_at < ?", []string{models.LinkStatePending, models.LinkStateProjectApplied}, cutoff).
		Order("created_at ASC").
		Find(&stuck).Error; err != nil {
		return 0, err
	}

	completed := 0
	for _, journal := range stuck {
		if journal.Attempts >= maxAttempts {
			s.park(ctx, journal, "attempts exhausted")
			continue
		}
		if err := s.retryOne(ctx, &journal); err != nil {
			journal.Attempts++
			journal.LastError = err.Error()
			if journal.Attempts >= maxAttempts {
				s.park(ctx, journal, err.Error())
				continue
			}
			if saveErr := s.DB.WithContext(ctx).Save(&journal).Error; saveErr != nil {
				log.Error().Err(saveErr).Str("journal_id", journal.JournalID.String()).Msg("Failed to update link journal")
			}
			continue
		}
		completed++
	}
	return completed, nil
}

func (s *Service) retryOne(ctx context.Context, journal *models.LinkJournal) error {
	var materials []string
	if len(journal.Materials) > 0 {
		if err := json.Unmarshal(journal.Materials, &materials); err != nil {
			return err
		}
	}

	var supplier models.Supplier
	if err := s.DB.WithContext(ctx).Where("supplier_id = ?", journal.SupplierID).First(&supplier).Error; err != nil {
		return err
	}
	var project models.Project
	if err := s.DB.WithContext(ctx).Where("project_id = ?", journal.ProjectID).First(&project).Error; err != nil {
		return err
	}

	if journal.State == models.LinkStatePending {
		applyProjectSide(&project, &supplier, materials, journal.Payment)
		if err := s.DB.WithContext(ctx).Save(&project).Error; err != nil {
			return err
		}
		journal.State = models.LinkStateProjectApplied
		if err := s.DB.WithContext(ctx).Save(journal).Error; err != nil {
			return err
		}
	}

	applySupplierSide(&supplier, &project, materials, journal.Payment)
	if err := s.DB.WithContext(ctx).Save(&supplier).Error; err != nil {
		return err
	}
	journal.State = models.LinkStateCompleted
	return s.DB.WithContext(ctx).Save(journal).Error
}

func (s *Service) park(ctx context.Context, journal models.LinkJournal, reason string) {
	journal.State = models.LinkStateFailed
	journal.LastError = reason
	if err := s.DB.WithContext(ctx).Save(&journal).Error; err != nil {
		log.Error().Err(err).Str("journal_id", journal.JournalID.String()).Msg("Failed to park link journal")
		return
	}
	log.Error().
		Str("journal_id", journal.JournalID.String()).
		Str("project_id", journal.ProjectID.String()).
		Str("supplier_id", journal.SupplierID.String()).
		Str("reason", reason).
		Msg("Link parked as failed; manual reconciliation required")
}
