// Package ledger holds the arithmetic of milk sales and payments against a
// customer's running balance.
//
// Sign convention: finalBalance = prevBalance + qty*price - received. A
// positive balance is money the customer owes (due); zero or negative is
// credit paid in advance.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/farm-portal/internal/domain"
)

// Input is the caller-supplied part of a ledger entry.
type Input struct {
	Date     string
	Qty      decimal.Decimal
	Price    decimal.Decimal
	Received decimal.Decimal
}

// Entry is the computed effect of an Input on a balance.
type Entry struct {
	Total        decimal.Decimal
	PrevBalance  decimal.Decimal
	FinalBalance decimal.Decimal
}

// Validate rejects negative amounts.
func (in Input) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{{"qty", in.Qty}, {"price", in.Price}, {"received", in.Received}}
	for _, f := range fields {
		if f.value.IsNegative() {
			return fmt.Errorf("%s must not be negative: %w", f.name, domain.ErrInvalidAmount)
		}
	}
	return nil
}

// Compute applies in to balance without side effects.
func Compute(balance decimal.Decimal, in Input) (Entry, error) {
	if err := in.Validate(); err != nil {
		return Entry{}, err
	}
	total := in.Qty.Mul(in.Price)
	return Entry{
		Total:        total,
		PrevBalance:  balance,
		FinalBalance: balance.Add(total).Sub(in.Received),
	}, nil
}

// Apply computes the entry for user, moves user's balance to the final
// balance and returns the transaction to append. user is left unchanged on
// error.
func Apply(user *domain.User, id string, typ domain.TransactionType, in Input) (domain.Transaction, error) {
	entry, err := Compute(user.Balance, in)
	if err != nil {
		return domain.Transaction{}, err
	}
	user.Balance = entry.FinalBalance
	return domain.Transaction{
		ID:           id,
		UserID:       user.ID,
		Date:         in.Date,
		Qty:          in.Qty,
		Price:        in.Price,
		Total:        entry.Total,
		Received:     in.Received,
		PrevBalance:  entry.PrevBalance,
		FinalBalance: entry.FinalBalance,
		Type:         typ,
	}, nil
}

// Payment builds the Input of a plain payment.
func Payment(date string, amount decimal.Decimal) Input {
	return Input{Date: date, Qty: decimal.Zero, Price: decimal.Zero, Received: amount}
}
