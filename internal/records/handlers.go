package records

import (
	"errors"
	"time"

	"stayledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// parseDate accepts plain calendar dates ("2024-01-01") or RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// POST /api/v1/forms
func (h *Handlers) Intake(c *fiber.Ctx) error {
	var input IntakeInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	rec, err := h.Service.Intake(c.Context(), input)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Record saved successfully", rec, nil)
}

// GET /api/v1/forms
func (h *Handlers) ListActive(c *fiber.Ctx) error {
	recs, err := h.Service.ListActive(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Records fetched successfully", recs, nil)
}

// PATCH /api/v1/forms/:id
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid record id format", fiber.StatusBadRequest, nil)
	}
	var patch ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	rec, err := h.Service.UpdateProfile(c.Context(), recordID, patch)
	if err != nil {
		return h.serviceError(c, err)
	}
	return response.Success(c, "Record updated successfully", rec, nil)
}

// PUT /api/v1/forms/:id/rent
func (h *Handlers) UpsertRent(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid record id format", fiber.StatusBadRequest, nil)
	}
	var body struct {
		RentAmount float64 `json:"rentAmount"`
		Date       string  `json:"date"`
	}
	if err := c.BodyParser(&body); err != nil || body.Date == "" {
		return response.Error(c, "rentAmount and date are required", fiber.StatusBadRequest, nil)
	}
	date, err := parseDate(body.Date)
	if err != nil {
		return response.Error(c, "Invalid date format", fiber.StatusBadRequest, nil)
	}
	rec, err := h.Service.UpsertRent(c.Context(), recordID, body.RentAmount, date)
	if err != nil {
		return h.serviceError(c, err)
	}
	return response.Success(c, "Rent updated successfully", rec, nil)
}

// DELETE /api/v1/forms/:id/rents/:monthYear
func (h *Handlers) RemoveRent(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid record id format", fiber.StatusBadRequest, nil)
	}
	monthYear := c.Params("monthYear")
	rec, err := h.Service.RemoveRent(c.Context(), recordID, monthYear)
	if err != nil {
		return h.serviceError(c, err)
	}
	return response.Success(c, "Rent entry removed successfully", rec, nil)
}

// POST /api/v1/forms/leave
func (h *Handlers) ProcessLeave(c *fiber.Ctx) error {
	var body struct {
		FormID    string `json:"formId"`
		LeaveDate string `json:"leaveDate"`
	}
	if err := c.BodyParser(&body); err != nil || body.FormID == "" || body.LeaveDate == "" {
		return response.Error(c, "formId and leaveDate are required", fiber.StatusBadRequest, nil)
	}
	recordID, err := uuid.Parse(body.FormID)
	if err != nil {
		return response.Error(c, "Invalid record id format", fiber.StatusBadRequest, nil)
	}
	leaveDate, err := parseDate(body.LeaveDate)
	if err != nil {
		return response.Error(c, "Invalid leaveDate format", fiber.StatusBadRequest, nil)
	}
	archived, rec, err := h.Service.SetLeaveDate(c.Context(), recordID, leaveDate, h.Service.now())
	if err != nil {
		return h.serviceError(c, err)
	}
	msg := "Leave date saved. It will be archived on the leave date."
	if archived {
		msg = "Record archived successfully."
	}
	return response.Success(c, msg, fiber.Map{"archived": archived, "record": rec}, nil)
}

// DELETE /api/v1/forms/:id
func (h *Handlers) Retire(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid record id format", fiber.StatusBadRequest, nil)
	}
	retired, err := h.Service.Retire(c.Context(), recordID)
	if err != nil {
		return h.serviceError(c, err)
	}
	return response.Success(c, "Record deleted and saved as a duplicate successfully", retired, nil)
}

// GET /api/v1/forms/retired
func (h *Handlers) ListRetired(c *fiber.Ctx) error {
	entries, err := h.Service.ListRetired(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Retired records fetched successfully", entries, nil)
}

// POST /api/v1/forms/restore
func (h *Handlers) Restore(c *fiber.Ctx) error {
	var body struct {
		ID string `json:"id"`
	}
	if err := c.BodyParser(&body); err != nil || body.ID == "" {
		return response.Error(c, "id is required", fiber.StatusBadRequest, nil)
	}
	archivedID, err := uuid.Parse(body.ID)
	if err != nil {
		return response.Error(c, "Invalid record id format", fiber.StatusBadRequest, nil)
	}
	rec, err := h.Service.Restore(c.Context(), archivedID)
	if err != nil {
		return h.serviceError(c, err)
	}
	return response.Success(c, "Record restored successfully", rec, nil)
}

// GET /api/v1/forms/archived
func (h *Handlers) ListArchived(c *fiber.Ctx) error {
	recs, err := h.Service.ListArchived(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Archived records fetched successfully", recs, nil)
}

// GET /api/v1/forms/archived/:id
func (h *Handlers) GetArchived(c *fiber.Ctx) error {
	archivedID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid record id format", fiber.StatusBadRequest, nil)
	}
	rec, err := h.Service.GetArchived(c.Context(), archivedID)
	if err != nil {
		return h.serviceError(c, err)
	}
	return response.Success(c, "Archived record fetched successfully", rec, nil)
}

func (h *Handlers) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrArchivedNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, ErrValidation):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
