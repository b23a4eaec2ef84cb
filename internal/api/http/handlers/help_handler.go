package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/farm-portal/internal/api/dto"
	"github.com/spec-kit/farm-portal/internal/service"
	apperrors "github.com/spec-kit/farm-portal/pkg/util/errorutil"
)

// HelpHandler relays questions to the help assistant.
type HelpHandler struct {
	help *service.HelpService
}

// NewHelpHandler constructs handler.
func NewHelpHandler(help *service.HelpService) *HelpHandler {
	return &HelpHandler{help: help}
}

// Ask POST /help/ask. Always answers 200 with some reply.
func (h *HelpHandler) Ask(c *fiber.Ctx) error {
	var req dto.HelpRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperrors.NewValidationError("text required", nil)
	}
	reply := h.help.Ask(c.UserContext(), req.Text)
	return c.JSON(fiber.Map{"data": fiber.Map{"reply": reply}})
}
