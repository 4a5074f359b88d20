package sweeper

import (
	"time"

	"stayledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Sweeper *Sweeper
}

// POST /api/v1/forms/sweep
// Manual trigger; optional referenceDate overrides today.
func (h *Handlers) RunSweep(c *fiber.Ctx) error {
	var body struct {
		ReferenceDate string `json:"referenceDate"`
	}
	_ = c.BodyParser(&body)

	ref := h.Sweeper.now()
	if body.ReferenceDate != "" {
		parsed, err := time.Parse("2006-01-02", body.ReferenceDate)
		if err != nil {
			return response.Error(c, "Invalid referenceDate format", fiber.StatusBadRequest, nil)
		}
		ref = parsed
	}

	count, err := h.Sweeper.Run(c.Context(), ref)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Sweep completed", fiber.Map{"archivedCount": count}, nil)
}
