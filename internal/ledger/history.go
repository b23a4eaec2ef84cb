package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/spec-kit/farm-portal/internal/domain"
)

// Newest returns the transactions of userID, most recently recorded first.
// txs must be in insertion order; the user-supplied Date plays no part.
// An empty userID selects every user. limit <= 0 means no limit.
func Newest(txs []domain.Transaction, userID string, limit int) []domain.Transaction {
	out := make([]domain.Transaction, 0)
	for i := len(txs) - 1; i >= 0; i-- {
		if userID != "" && txs[i].UserID != userID {
			continue
		}
		out = append(out, txs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Label names the side of a balance.
type Label string

const (
	LabelDue    Label = "due"
	LabelCredit Label = "credit"
)

// BalanceLabel reports whether balance is owed by the customer or held as credit.
func BalanceLabel(balance decimal.Decimal) Label {
	if balance.IsPositive() {
		return LabelDue
	}
	return LabelCredit
}

// Summary aggregates customer balances for the admin dashboard.
type Summary struct {
	Customers    int
	TotalDue     decimal.Decimal
	TotalAdvance decimal.Decimal
}

// Summarize totals outstanding dues and advances across customers. Admin
// accounts are skipped.
func Summarize(users []domain.User) Summary {
	s := Summary{TotalDue: decimal.Zero, TotalAdvance: decimal.Zero}
	for _, u := range users {
		if u.Role != domain.RoleUser {
			continue
		}
		s.Customers++
		switch {
		case u.Balance.IsPositive():
			s.TotalDue = s.TotalDue.Add(u.Balance)
		case u.Balance.IsNegative():
			s.TotalAdvance = s.TotalAdvance.Add(u.Balance.Abs())
		}
	}
	return s
}
