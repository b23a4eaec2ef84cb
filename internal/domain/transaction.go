package domain

import "github.com/shopspring/decimal"

// TransactionType distinguishes milk deliveries from plain payments.
type TransactionType string

const (
	TransactionSale    TransactionType = "sale"
	TransactionPayment TransactionType = "payment"
)

// Transaction is an immutable ledger entry. FinalBalance always equals
// PrevBalance + Total - Received.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Date         string          `json:"date"`
	Qty          decimal.Decimal `json:"qty"`
	Price        decimal.Decimal `json:"price"`
	Total        decimal.Decimal `json:"total"`
	Received     decimal.Decimal `json:"received"`
	PrevBalance  decimal.Decimal `json:"prevBalance"`
	FinalBalance decimal.Decimal `json:"finalBalance"`
	Type         TransactionType `json:"type"`
}
