package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/farm-portal/internal/api/dto"
	"github.com/spec-kit/farm-portal/internal/service"
	apperrors "github.com/spec-kit/farm-portal/pkg/util/errorutil"
)

// LedgerHandler exposes sales, payments and the admin dashboard.
type LedgerHandler struct {
	ledger *service.LedgerService
}

// NewLedgerHandler constructs handler.
func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// RecordSale POST /admin/sales.
func (h *LedgerHandler) RecordSale(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SaleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("userId required", nil)
	}
	tx, err := h.ledger.RecordSale(c.UserContext(), actor, service.SaleInput{
		UserID:   req.UserID,
		Date:     req.Date,
		Qty:      req.Qty,
		Price:    req.Price,
		Received: req.Received,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": tx})
}

// RecordPayment POST /admin/payments.
func (h *LedgerHandler) RecordPayment(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.PaymentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("userId required", nil)
	}
	tx, err := h.ledger.RecordPayment(c.UserContext(), actor, service.PaymentInput{
		UserID: req.UserID,
		Date:   req.Date,
		Amount: req.Amount,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": tx})
}

// Transactions GET /admin/transactions?userId=&limit=.
func (h *LedgerHandler) Transactions(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 0)
	if userID := c.Query("userId"); userID != "" {
		txs, err := h.ledger.History(c.UserContext(), actor, userID, limit)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": txs})
	}
	txs, err := h.ledger.RecentActivity(c.UserContext(), actor, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": txs})
}

// Summary GET /admin/summary.
func (h *LedgerHandler) Summary(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	sum, err := h.ledger.Summary(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSummaryResponse(sum)})
}
