package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/service"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// IncidentsHandler exposes incident CRUD and lifecycle endpoints.
type IncidentsHandler struct {
	incidents *service.IncidentService
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidents *service.IncidentService) *IncidentsHandler {
	return &IncidentsHandler{incidents: incidents}
}

// List handles GET /incidents, scoped to what the caller may see.
func (h *IncidentsHandler) List(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	filter := service.ListFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := strings.TrimSpace(c.Query("state")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			state, ok := domain.ParseIncidentState(strings.TrimSpace(part))
			if !ok {
				return apperrors.NewValidationError("invalid state filter", map[string]any{"state": part})
			}
			filter.States = append(filter.States, state)
		}
	}

	views, err := h.incidents.List(c.Context(), principal, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIncidentListResponse(views)})
}

// Create handles POST /incidents.
func (h *IncidentsHandler) Create(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.IncidentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.incidents.Create(c.Context(), principal, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewIncidentResponse(*view)})
}

// Get handles GET /incidents/:id.
func (h *IncidentsHandler) Get(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := incidentID(c)
	if err != nil {
		return err
	}

	view, err := h.incidents.Get(c.Context(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIncidentResponse(*view)})
}

// Update handles PATCH /incidents/:id.
func (h *IncidentsHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := incidentID(c)
	if err != nil {
		return err
	}

	var req dto.IncidentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.incidents.Update(c.Context(), principal, id, req.ToPatch())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIncidentResponse(*view)})
}

// StartWork handles POST /incidents/:id/start.
func (h *IncidentsHandler) StartWork(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := incidentID(c)
	if err != nil {
		return err
	}

	view, err := h.incidents.StartWork(c.Context(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIncidentResponse(*view)})
}

// CloseNow handles POST /incidents/:id/close. The body is optional; when it
// carries timeSpentMinutes, that value overrides the computed duration.
func (h *IncidentsHandler) CloseNow(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := incidentID(c)
	if err != nil {
		return err
	}

	var req dto.IncidentCloseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	view, err := h.incidents.CloseNow(c.Context(), principal, id, req.TimeSpentMinutes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIncidentResponse(*view)})
}

func incidentID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid incident id", map[string]any{"id": c.Params("id")})
	}
	return int64(id), nil
}
