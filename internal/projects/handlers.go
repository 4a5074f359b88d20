package projects

import (
	"errors"

	"stayledger-backend/internal/links"
	"stayledger-backend/internal/pkg/response"
	"stayledger-backend/internal/suppliers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service   *Service
	Links     *links.Service
	Suppliers *suppliers.Service
}

// POST /api/v1/projects
func (h *Handlers) Create(c *fiber.Ctx) error {
	var input CreateInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	project, err := h.Service.Create(c.Context(), input)
	if err != nil {
		return h.serviceError(c, err)
	}
	return response.SuccessCreated(c, "Project created successfully", project, nil)
}

// GET /api/v1/projects
func (h *Handlers) List(c *fiber.Ctx) error {
	projects, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Projects fetched successfully", projects, nil)
}

// GET /api/v1/projects/:projectId
func (h *Handlers) Get(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("projectId"))
	if err != nil {
		return response.Error(c, "Invalid project id format", fiber.StatusBadRequest, nil)
	}
	project, err := h.Service.Get(c.Context(), projectID)
	if err != nil {
		return h.serviceError(c, err)
	}
	return response.Success(c, "Project fetched successfully", project, nil)
}

// POST /api/v1/projects/:id/employees
func (h *Handlers) AddEmployee(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid project id format", fiber.StatusBadRequest, nil)
	}
	var input EmployeeInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	project, err := h.Service.AddEmployee(c.Context(), projectID, input)
	if err != nil {
		return h.serviceError(c, err)
	}
	return response.SuccessCreated(c, "Employee added successfully", project, nil)
}

// POST /api/v1/projects/:projectId/employees/:employeeId/payments
func (h *Handlers) AddEmployeePayment(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("projectId"))
	if err != nil {
		return response.Error(c, "Invalid project id format", fiber.StatusBadRequest, nil)
	}
	employeeID, err := uuid.Parse(c.Params("employeeId"))
	if err != nil {
		return response.Error(c, "Invalid employee id format", fiber.StatusBadRequest, nil)
	}
	var input PaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	project, err := h.Service.AddEmployeePayment(c.Context(), projectID, employeeID, input)
	if err != nil {
		return h.serviceError(c, err)
	}
	return response.SuccessCreated(c, "Payment added successfully", project, nil)
}

// POST /api/v1/projects/:projectId/suppliers
func (h *Handlers) LinkSupplier(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("projectId"))
	if err != nil {
		return response.Error(c, "Invalid Project ID or Supplier ID format", fiber.StatusBadRequest, nil)
	}
	var body struct {
		SupplierID string   `json:"supplierId"`
		Materials  []string `json:"materials"`
		Payment    float64  `json:"payment"`
	}
	if err := c.BodyParser(&body); err != nil || body.SupplierID == "" {
		return response.Error(c, "supplierId is required", fiber.StatusBadRequest, nil)
	}
	supplierID, err := uuid.Parse(body.SupplierID)
	if err != nil {
		return response.Error(c, "Invalid Project ID or Supplier ID format", fiber.StatusBadRequest, nil)
	}
	result, err := h.Links.Link(c.Context(), projectID, supplierID, body.Materials, body.Payment)
	if err != nil {
		switch {
		case errors.Is(err, links.ErrInvalidIdentifier):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, links.ErrProjectNotFound), errors.Is(err, links.ErrSupplierNotFound):
			return response.NotFound(c, err.Error())
		default:
			return response.Error(c, "Error adding supplier", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Supplier updated in project and supplier record", result, nil)
}

// GET /api/v1/projects/:projectId/suppliers
// Flat listing of all suppliers (id, name, phone) — not filtered by project;
// the frontend uses it to pick a supplier to link.
func (h *Handlers) ListSuppliers(c *fiber.Ctx) error {
	list, err := h.Suppliers.ListSummaries(c.Context())
	if err != nil {
		return response.Error(c, "Error fetching suppliers", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Suppliers fetched successfully", list, nil)
}

func (h *Handlers) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrEmployeeNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, ErrValidation):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
