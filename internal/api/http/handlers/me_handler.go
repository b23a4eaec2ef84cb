package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/farm-portal/internal/api/dto"
	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/service"
)

// MeHandler serves the signed-in customer's own view.
type MeHandler struct {
	ledger    *service.LedgerService
	approvals *service.ApprovalService
}

// NewMeHandler constructs handler.
func NewMeHandler(ledger *service.LedgerService, approvals *service.ApprovalService) *MeHandler {
	return &MeHandler{ledger: ledger, approvals: approvals}
}

// Profile GET /me.
func (h *MeHandler) Profile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Transactions GET /me/transactions?limit=.
func (h *MeHandler) Transactions(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	txs, err := h.ledger.History(c.UserContext(), user, user.ID, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": txs})
}

// PlaceOrder POST /me/orders.
func (h *MeHandler) PlaceOrder(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.OrderRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	created, err := h.approvals.SubmitOrder(c.UserContext(), user, req.Item)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRequestResponse(created)})
}

// Orders GET /me/orders.
func (h *MeHandler) Orders(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	orders, err := h.approvals.Orders(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orders})
}

// RequestProfileUpdate POST /me/profile-requests.
func (h *MeHandler) RequestProfileUpdate(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var patch domain.UserPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	created, err := h.approvals.SubmitProfileUpdate(c.UserContext(), user, patch)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRequestResponse(created)})
}

// Requests GET /me/requests.
func (h *MeHandler) Requests(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	reqs, err := h.approvals.List(c.UserContext(), user, service.RequestFilter{
		UserID: user.ID,
		Status: domain.RequestStatus(c.Query("status")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestResponses(reqs)})
}
