package records

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stayledger-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRecordApp(t *testing.T, now time.Time) (*fiber.App, *Service) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TenancyRecord{}, &models.ArchivedRecord{}, &models.RetiredRecord{}))

	svc := &Service{DB: db, Now: func() time.Time { return now }}
	h := &Handlers{Service: svc}

	app := fiber.New()
	app.Post("/api/v1/forms/", h.Intake)
	app.Get("/api/v1/forms/", h.ListActive)
	app.Post("/api/v1/forms/leave", h.ProcessLeave)
	app.Post("/api/v1/forms/restore", h.Restore)
	app.Get("/api/v1/forms/retired", h.ListRetired)
	app.Get("/api/v1/forms/archived", h.ListArchived)
	app.Get("/api/v1/forms/archived/:id", h.GetArchived)
	app.Patch("/api/v1/forms/:id", h.UpdateProfile)
	app.Put("/api/v1/forms/:id/rent", h.UpsertRent)
	app.Delete("/api/v1/forms/:id/rents/:monthYear", h.RemoveRent)
	app.Delete("/api/v1/forms/:id", h.Retire)
	return app, svc
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp, parsed
}

func TestIntakeHandler_CreatesRecord(t *testing.T) {
	app, _ := setupRecordApp(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/forms/", fiber.Map{
		"name":    "Ravi Kumar",
		"roomNo":  "101",
		"phoneNo": "9876543210",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Record saved successfully", body["message"])

	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["recordId"])
}

func TestIntakeHandler_RejectsMissingName(t *testing.T) {
	app, _ := setupRecordApp(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/forms/", fiber.Map{"roomNo": "101"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
}

func TestProcessLeaveHandler_PastDateArchives(t *testing.T) {
	app, svc := setupRecordApp(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rec := mustIntake(t, svc, "Ravi Kumar")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/forms/leave", fiber.Map{
		"formId":    rec.RecordID.String(),
		"leaveDate": "2024-01-01",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Record archived successfully.", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["archived"])
}

func TestProcessLeaveHandler_FutureDateSchedules(t *testing.T) {
	app, svc := setupRecordApp(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rec := mustIntake(t, svc, "Ravi Kumar")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/forms/leave", fiber.Map{
		"formId":    rec.RecordID.String(),
		"leaveDate": "2024-06-01",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Leave date saved. It will be archived on the leave date.", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, false, data["archived"])
}

func TestProcessLeaveHandler_UnknownRecord(t *testing.T) {
	app, _ := setupRecordApp(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/forms/leave", fiber.Map{
		"formId":    "6a1f0d0e-0000-4000-8000-000000000000",
		"leaveDate": "2024-01-01",
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "Record not found", errObj["message"])
}

func TestProcessLeaveHandler_BadPayloads(t *testing.T) {
	app, _ := setupRecordApp(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/forms/leave", fiber.Map{"formId": "abc"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/forms/leave", fiber.Map{
		"formId":    "not-a-uuid",
		"leaveDate": "2024-01-01",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/forms/leave", fiber.Map{
		"formId":    "6a1f0d0e-0000-4000-8000-000000000000",
		"leaveDate": "01/01/2024",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRetireAndRestoreFlowOverHTTP(t *testing.T) {
	app, svc := setupRecordApp(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rec := mustIntake(t, svc, "Ravi Kumar")

	// Archive first so restore has something to work with.
	_, body := doJSON(t, app, http.MethodPost, "/api/v1/forms/leave", fiber.Map{
		"formId":    rec.RecordID.String(),
		"leaveDate": "2023-12-01",
	})
	require.Equal(t, "Record archived successfully.", body["message"])

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/forms/archived", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/forms/restore", fiber.Map{"id": rec.RecordID.String()})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Record restored successfully", body["message"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/forms/archived/"+rec.RecordID.String(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRetireHandler(t *testing.T) {
	app, svc := setupRecordApp(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rec := mustIntake(t, svc, "Ravi Kumar")

	resp, body := doJSON(t, app, http.MethodDelete, "/api/v1/forms/"+rec.RecordID.String(), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Record deleted and saved as a duplicate successfully", body["message"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/forms/retired", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)
}

func TestRentHandlers(t *testing.T) {
	app, svc := setupRecordApp(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rec := mustIntake(t, svc, "Ravi Kumar")

	resp, _ := doJSON(t, app, http.MethodPut, "/api/v1/forms/"+rec.RecordID.String()+"/rent", fiber.Map{
		"rentAmount": 4000,
		"date":       "2024-03-05",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPut, "/api/v1/forms/"+rec.RecordID.String()+"/rent", fiber.Map{
		"rentAmount": 4500,
		"date":       "2024-03-25",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	rents := data["rents"].([]interface{})
	require.Len(t, rents, 1)

	resp, body = doJSON(t, app, http.MethodDelete, "/api/v1/forms/"+rec.RecordID.String()+"/rents/Mar-24", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = body["data"].(map[string]interface{})
	assert.Len(t, data["rents"], 0)
}

func TestUpdateProfileHandler_InvalidID(t *testing.T) {
	app, _ := setupRecordApp(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	resp, _ := doJSON(t, app, http.MethodPatch, "/api/v1/forms/not-a-uuid", fiber.Map{"roomNo": "204"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
