package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/service"
)

// TechniciansHandler exposes the technician directory used for assignment.
type TechniciansHandler struct {
	directory *service.DirectoryService
}

// NewTechniciansHandler constructs handler.
func NewTechniciansHandler(directory *service.DirectoryService) *TechniciansHandler {
	return &TechniciansHandler{directory: directory}
}

// List handles GET /users/technicians. Admin-only; enforced by route guard.
func (h *TechniciansHandler) List(c *fiber.Ctx) error {
	entries, err := h.directory.ListTechnicians(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}
