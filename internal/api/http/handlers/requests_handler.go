package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/farm-portal/internal/api/dto"
	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/service"
)

// RequestsHandler exposes the admin's approval queue.
type RequestsHandler struct {
	approvals *service.ApprovalService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(approvals *service.ApprovalService) *RequestsHandler {
	return &RequestsHandler{approvals: approvals}
}

// List GET /admin/requests?status=&type=&userId=.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	reqs, err := h.approvals.List(c.UserContext(), actor, service.RequestFilter{
		UserID: c.Query("userId"),
		Status: domain.RequestStatus(c.Query("status")),
		Type:   domain.RequestType(c.Query("type")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestResponses(reqs)})
}

// PendingCount GET /admin/requests/pending-count.
func (h *RequestsHandler) PendingCount(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	n, err := h.approvals.PendingCount(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"pending": n}})
}

// Approve POST /admin/requests/:id/approve.
func (h *RequestsHandler) Approve(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	req, err := h.approvals.Approve(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestResponse(req)})
}

// Reject POST /admin/requests/:id/reject.
func (h *RequestsHandler) Reject(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	req, err := h.approvals.Reject(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestResponse(req)})
}

// Orders GET /admin/orders.
func (h *RequestsHandler) Orders(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	orders, err := h.approvals.Orders(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orders})
}
