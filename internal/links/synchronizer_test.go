package links

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"stayledger-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupLinkService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Project{}, &models.Supplier{}, &models.LinkJournal{}))
	return &Service{DB: db}, db
}

func seedPair(t *testing.T, db *gorm.DB) (models.Project, models.Supplier) {
	project := models.Project{Heading: "Block A Renovation"}
	require.NoError(t, db.Create(&project).Error)
	supplier := models.Supplier{Name: "Sharma Traders", PhoneNo: "9876543210"}
	require.NoError(t, db.Create(&supplier).Error)
	return project, supplier
}

func TestLink_WritesBothSides(t *testing.T) {
	svc, db := setupLinkService(t)
	project, supplier := seedPair(t, db)

	result, err := svc.Link(context.Background(), project.ProjectID, supplier.SupplierID, []string{"cement"}, 500)
	require.NoError(t, err)

	supplierSummaries := []models.SupplierSummary(result.Project.Suppliers)
	require.Len(t, supplierSummaries, 1)
	assert.Equal(t, supplier.SupplierID, supplierSummaries[0].SupplierID)
	assert.Equal(t, "Sharma Traders", supplierSummaries[0].Name)
	assert.Equal(t, []string{"cement"}, supplierSummaries[0].Materials)
	assert.Equal(t, 500.0, supplierSummaries[0].Payment)

	projectSummaries := []models.ProjectSummary(result.Supplier.Projects)
	require.Len(t, projectSummaries, 1)
	assert.Equal(t, project.ProjectID, projectSummaries[0].ProjectID)
	assert.Equal(t, "Block A Renovation", projectSummaries[0].ProjectName)
	assert.Equal(t, 500.0, projectSummaries[0].Payment)

	var journal models.LinkJournal
	require.NoError(t, db.First(&journal).Error)
	assert.Equal(t, models.LinkStateCompleted, journal.State)
}

func TestLink_SecondLinkAccumulates(t *testing.T) {
	svc, db := setupLinkService(t)
	project, supplier := seedPair(t, db)
	ctx := context.Background()

	_, err := svc.Link(ctx, project.ProjectID, supplier.SupplierID, []string{"cement"}, 500)
	require.NoError(t, err)
	result, err := svc.Link(ctx, project.ProjectID, supplier.SupplierID, []string{"cement"}, 500)
	require.NoError(t, err)

	supplierSummaries := []models.SupplierSummary(result.Project.Suppliers)
	require.Len(t, supplierSummaries, 1)
	assert.Equal(t, []string{"cement", "cement"}, supplierSummaries[0].Materials)
	assert.Equal(t, 1000.0, supplierSummaries[0].Payment)

	projectSummaries := []models.ProjectSummary(result.Supplier.Projects)
	require.Len(t, projectSummaries, 1)
	assert.Equal(t, []string{"cement", "cement"}, projectSummaries[0].Materials)
	assert.Equal(t, 1000.0, projectSummaries[0].Payment)
}

func TestLink_NilIdentifiers(t *testing.T) {
	svc, _ := setupLinkService(t)
	_, err := svc.Link(context.Background(), uuid.Nil, uuid.New(), nil, 0)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	_, err = svc.Link(context.Background(), uuid.New(), uuid.Nil, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestLink_MissingSupplierMutatesNothing(t *testing.T) {
	svc, db := setupLinkService(t)
	project, _ := seedPair(t, db)

	_, err := svc.Link(context.Background(), project.ProjectID, uuid.New(), []string{"cement"}, 500)
	assert.ErrorIs(t, err, ErrSupplierNotFound)

	var reloaded models.Project
	require.NoError(t, db.Where("project_id = ?", project.ProjectID).First(&reloaded).Error)
	assert.Empty(t, []models.SupplierSummary(reloaded.Suppliers))

	var journalCount int64
	db.Model(&models.LinkJournal{}).Count(&journalCount)
	assert.EqualValues(t, 0, journalCount)
}

func TestLink_MissingProjectMutatesNothing(t *testing.T) {
	svc, db := setupLinkService(t)
	_, supplier := seedPair(t, db)

	_, err := svc.Link(context.Background(), uuid.New(), supplier.SupplierID, []string{"cement"}, 500)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	var reloaded models.Supplier
	require.NoError(t, db.Where("supplier_id = ?", supplier.SupplierID).First(&reloaded).Error)
	assert.Empty(t, []models.ProjectSummary(reloaded.Projects))
}

func seedJournal(t *testing.T, db *gorm.DB, project models.Project, supplier models.Supplier, state string, attempts int) models.LinkJournal {
	materials, _ := json.Marshal([]string{"cement"})
	journal := models.LinkJournal{
		ProjectID:  project.ProjectID,
		SupplierID: supplier.SupplierID,
		Materials:  datatypes.JSON(materials),
		Payment:    500,
		State:      state,
		Attempts:   attempts,
	}
	require.NoError(t, db.Create(&journal).Error)
	// Push updated_at into the past so the grace window does not skip it.
	require.NoError(t, db.Model(&models.LinkJournal{}).
		Where("journal_id = ?", journal.JournalID).
		UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error)
	return journal
}

func TestReconcile_CompletesProjectAppliedRow(t *testing.T) {
	svc, db := setupLinkService(t)
	project, supplier := seedPair(t, db)

	// Simulate a crash after the project side was written.
	project.Suppliers = datatypes.NewJSONSlice([]models.SupplierSummary{{
		SupplierID: supplier.SupplierID,
		Name:       supplier.Name,
		PhoneNo:    supplier.PhoneNo,
		Materials:  []string{"cement"},
		Payment:    500,
	}})
	require.NoError(t, db.Save(&project).Error)
	journal := seedJournal(t, db, project, supplier, models.LinkStateProjectApplied, 1)

	completed, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, completed)

	// Only the supplier mirror was applied; the project side is untouched.
	var reloadedProject models.Project
	require.NoError(t, db.Where("project_id = ?", project.ProjectID).First(&reloadedProject).Error)
	summaries := []models.SupplierSummary(reloadedProject.Suppliers)
	require.Len(t, summaries, 1)
	assert.Equal(t, []string{"cement"}, summaries[0].Materials)
	assert.Equal(t, 500.0, summaries[0].Payment)

	var reloadedSupplier models.Supplier
	require.NoError(t, db.Where("supplier_id = ?", supplier.SupplierID).First(&reloadedSupplier).Error)
	projectSummaries := []models.ProjectSummary(reloadedSupplier.Projects)
	require.Len(t, projectSummaries, 1)
	assert.Equal(t, 500.0, projectSummaries[0].Payment)

	var reloadedJournal models.LinkJournal
	require.NoError(t, db.Where("journal_id = ?", journal.JournalID).First(&reloadedJournal).Error)
	assert.Equal(t, models.LinkStateCompleted, reloadedJournal.State)
}

func TestReconcile_DrivesPendingRowThroughBothSides(t *testing.T) {
	svc, db := setupLinkService(t)
	project, supplier := seedPair(t, db)
	seedJournal(t, db, project, supplier, models.LinkStatePending, 0)

	completed, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, completed)

	var reloadedProject models.Project
	require.NoError(t, db.Where("project_id = ?", project.ProjectID).First(&reloadedProject).Error)
	assert.Len(t, []models.SupplierSummary(reloadedProject.Suppliers), 1)

	var reloadedSupplier models.Supplier
	require.NoError(t, db.Where("supplier_id = ?", supplier.SupplierID).First(&reloadedSupplier).Error)
	assert.Len(t, []models.ProjectSummary(reloadedSupplier.Projects), 1)
}

func TestReconcile_ParksAfterMaxAttempts(t *testing.T) {
	svc, db := setupLinkService(t)
	svc.MaxAttempts = 3
	project, supplier := seedPair(t, db)
	journal := seedJournal(t, db, project, supplier, models.LinkStatePending, 3)

	completed, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, completed)

	var reloaded models.LinkJournal
	require.NoError(t, db.Where("journal_id = ?", journal.JournalID).First(&reloaded).Error)
	assert.Equal(t, models.LinkStateFailed, reloaded.State)
}

func TestReconcile_SkipsCompletedRows(t *testing.T) {
	svc, db := setupLinkService(t)
	project, supplier := seedPair(t, db)
	seedJournal(t, db, project, supplier, models.LinkStateCompleted, 0)

	completed, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, completed)
}

func TestReconcile_GraceWindowHoldsFreshRows(t *testing.T) {
	svc, db := setupLinkService(t)
	svc.Grace = time.Hour
	project, supplier := seedPair(t, db)

	materials, _ := json.Marshal([]string{"cement"})
	journal := models.LinkJournal{
		ProjectID:  project.ProjectID,
		SupplierID: supplier.SupplierID,
		Materials:  datatypes.JSON(materials),
		Payment:    500,
		State:      models.LinkStatePending,
	}
	require.NoError(t, db.Create(&journal).Error)

	completed, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, completed)
}
