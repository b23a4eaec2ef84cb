package dto

import (
	"github.com/shopspring/decimal"

	"github.com/spec-kit/farm-portal/internal/ledger"
)

// SaleRequest payload for POST /admin/sales.
type SaleRequest struct {
	UserID   string          `json:"userId"`
	Date     string          `json:"date"`
	Qty      decimal.Decimal `json:"qty"`
	Price    decimal.Decimal `json:"price"`
	Received decimal.Decimal `json:"received"`
}

// PaymentRequest payload for POST /admin/payments.
type PaymentRequest struct {
	UserID string          `json:"userId"`
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// SummaryResponse is the admin dashboard totals.
type SummaryResponse struct {
	Customers    int             `json:"customers"`
	TotalDue     decimal.Decimal `json:"totalDue"`
	TotalAdvance decimal.Decimal `json:"totalAdvance"`
}

// NewSummaryResponse maps a ledger summary.
func NewSummaryResponse(s ledger.Summary) SummaryResponse {
	return SummaryResponse{Customers: s.Customers, TotalDue: s.TotalDue, TotalAdvance: s.TotalAdvance}
}
