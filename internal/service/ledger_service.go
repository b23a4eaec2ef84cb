package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/events"
	"github.com/spec-kit/farm-portal/internal/ledger"
	"github.com/spec-kit/farm-portal/internal/repository"
)

// LedgerService records sales and payments against customer balances.
type LedgerService struct {
	directory *repository.Directory
	publisher
}

// LedgerDependencies wires the ledger service.
type LedgerDependencies struct {
	Directory  *repository.Directory
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewLedgerService builds the service.
func NewLedgerService(deps LedgerDependencies) *LedgerService {
	return &LedgerService{
		directory: deps.Directory,
		publisher: newPublisher(deps.Dispatcher, deps.Logger),
	}
}

// SaleInput describes a delivery entered by the admin. Date defaults to today.
type SaleInput struct {
	UserID   string
	Date     string
	Qty      decimal.Decimal
	Price    decimal.Decimal
	Received decimal.Decimal
}

// PaymentInput describes money received without a delivery.
type PaymentInput struct {
	UserID string
	Date   string
	Amount decimal.Decimal
}

// RecordSale appends a sale for the customer in.UserID and moves their
// balance. Admin accounts carry no ledger.
func (s *LedgerService) RecordSale(ctx context.Context, actor domain.User, in SaleInput) (domain.Transaction, error) {
	return s.record(ctx, actor, in.UserID, domain.TransactionSale, ledger.Input{
		Date:     in.Date,
		Qty:      in.Qty,
		Price:    in.Price,
		Received: in.Received,
	})
}

// RecordPayment appends a payment, the compensating entry for a due balance.
func (s *LedgerService) RecordPayment(ctx context.Context, actor domain.User, in PaymentInput) (domain.Transaction, error) {
	if in.Amount.IsZero() {
		return domain.Transaction{}, fmt.Errorf("payment amount must be positive: %w", domain.ErrInvalidAmount)
	}
	return s.record(ctx, actor, in.UserID, domain.TransactionPayment, ledger.Payment(in.Date, in.Amount))
}

func (s *LedgerService) record(ctx context.Context, actor domain.User, userID string, typ domain.TransactionType, in ledger.Input) (domain.Transaction, error) {
	if err := in.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	var (
		tx      domain.Transaction
		updated domain.User
	)
	err := s.directory.Update(ctx, func(snap *repository.Snapshot) error {
		if err := requireAdmin(snap, actor); err != nil {
			return err
		}
		user, ok := snap.User(userID)
		if !ok {
			return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		if user.Role != domain.RoleUser {
			return fmt.Errorf("user %s is not a customer: %w", userID, domain.ErrInvalidInput)
		}
		if in.Date == "" {
			in.Date = snap.Now().Format(dateLayout)
		}
		var err error
		tx, err = ledger.Apply(user, snap.NewTransactionID(), typ, in)
		if err != nil {
			return err
		}
		snap.Transactions = append(snap.Transactions, tx)
		updated = user.Clone()
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logger.Info("ledger entry recorded",
		zap.String("transaction_id", tx.ID),
		zap.String("user_id", tx.UserID),
		zap.String("type", string(tx.Type)),
		zap.String("final_balance", tx.FinalBalance.String()))

	eventType := events.EventSaleRecorded
	if typ == domain.TransactionPayment {
		eventType = events.EventPaymentRecorded
	}
	s.publishEvent(ctx, events.Event{
		Type:    eventType,
		UserID:  updated.ID,
		Actor:   actorOf(actor),
		Payload: events.LedgerPayload{Transaction: tx, User: updated},
	})
	s.userChanged(ctx, actor, updated)
	return tx, nil
}

// History returns userID's transactions, most recently recorded first.
// Customers may only read their own.
func (s *LedgerService) History(ctx context.Context, actor domain.User, userID string, limit int) ([]domain.Transaction, error) {
	if userID == "" {
		userID = actor.ID
	}
	if userID != actor.ID {
		if err := requireAdminView(s.directory, actor); err != nil {
			return nil, err
		}
	}
	if _, err := s.directory.User(userID); err != nil {
		return nil, err
	}
	return ledger.Newest(s.directory.Transactions(), userID, limit), nil
}

// RecentActivity returns the latest transactions across every customer.
func (s *LedgerService) RecentActivity(ctx context.Context, actor domain.User, limit int) ([]domain.Transaction, error) {
	if err := requireAdminView(s.directory, actor); err != nil {
		return nil, err
	}
	return ledger.Newest(s.directory.Transactions(), "", limit), nil
}

// Summary totals dues and advances for the admin dashboard.
func (s *LedgerService) Summary(ctx context.Context, actor domain.User) (ledger.Summary, error) {
	if err := requireAdminView(s.directory, actor); err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(s.directory.Users()), nil
}
