package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-core/internal/ingestion"
	apperrors "github.com/spec-kit/helpdesk-core/pkg/util/errorutil"
)

// IngestionHandler exposes on-demand mailbox ingestion triggers.
type IngestionHandler struct {
	coordinator *ingestion.Coordinator
}

// NewIngestionHandler returns a new handler instance.
func NewIngestionHandler(coordinator *ingestion.Coordinator) *IngestionHandler {
	return &IngestionHandler{coordinator: coordinator}
}

// Run triggers one ingestion cycle across all enabled mailbox accounts.
func (h *IngestionHandler) Run(c *fiber.Ctx) error {
	result := h.coordinator.FetchAll(c.UserContext())
	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(result)
}

// RunAccount triggers ingestion for a single mailbox account.
func (h *IngestionHandler) RunAccount(c *fiber.Ctx) error {
	accountID := c.Params("id")
	if accountID == "" {
		return apperrors.NewValidationError("account id is required", nil)
	}
	result := h.coordinator.FetchAccount(c.UserContext(), accountID)
	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(result)
}
