package suppliers

import (
	"errors"

	"stayledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// POST /api/v1/suppliers
func (h *Handlers) Create(c *fiber.Ctx) error {
	var input CreateInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	supplier, err := h.Service.Create(c.Context(), input)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Supplier created successfully", supplier, nil)
}

// GET /api/v1/suppliers
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Suppliers fetched successfully", list, nil)
}
