package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/events"
	"github.com/spec-kit/farm-portal/internal/ledger"
)

func TestRecordSaleLeavesCustomerOwing60(t *testing.T) {
	f := newFixture(t)

	tx, err := f.ledger.RecordSale(context.Background(), f.admin, SaleInput{
		UserID: f.customer.ID, Qty: d("2"), Price: d("80"), Received: d("100"),
	})
	require.NoError(t, err)

	assert.True(t, tx.Total.Equal(d("160")))
	assert.True(t, tx.PrevBalance.IsZero())
	assert.True(t, tx.FinalBalance.Equal(d("60")))
	assert.Equal(t, domain.TransactionSale, tx.Type)
	assert.Equal(t, "2024-03-01", tx.Date)

	customer, err := f.dir.User(f.customer.ID)
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(d("60")))
	assert.Equal(t, ledger.LabelDue, ledger.BalanceLabel(customer.Balance))
	assert.Equal(t, []events.EventType{events.EventSaleRecorded, events.EventUserChanged}, f.eventTypes())
}

func TestLedgerEntriesOnlyForCustomers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.RecordSale(ctx, f.admin, SaleInput{UserID: f.admin.ID, Qty: d("1"), Price: d("80")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.RecordPayment(ctx, f.admin, PaymentInput{UserID: f.admin.ID, Amount: d("50")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	admin, err := f.dir.User(f.admin.ID)
	require.NoError(t, err)
	assert.True(t, admin.Balance.IsZero())
	assert.Empty(t, f.dir.Transactions())
	assert.Empty(t, f.eventTypes())
}

func TestRecordSaleChainsBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inputs := []SaleInput{
		{Qty: d("2"), Price: d("80"), Received: d("100")},
		{Qty: d("1.5"), Price: d("80"), Received: d("0")},
		{Qty: d("0"), Price: d("80"), Received: d("500")},
		{Qty: d("3"), Price: d("75.5"), Received: d("226.5")},
	}
	for _, in := range inputs {
		in.UserID = f.customer.ID
		_, err := f.ledger.RecordSale(ctx, f.admin, in)
		require.NoError(t, err)
	}

	history, err := f.ledger.History(ctx, f.admin, f.customer.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, len(inputs))

	prev := d("0")
	for i := len(history) - 1; i >= 0; i-- {
		tx := history[i]
		assert.True(t, tx.PrevBalance.Equal(prev), "tx %s prev %s want %s", tx.ID, tx.PrevBalance, prev)
		want := tx.PrevBalance.Add(tx.Qty.Mul(tx.Price)).Sub(tx.Received)
		assert.True(t, tx.FinalBalance.Equal(want))
		prev = tx.FinalBalance
	}

	customer, err := f.dir.User(f.customer.ID)
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(prev))
	assert.True(t, prev.Equal(d("-320")))
	assert.Equal(t, ledger.LabelCredit, ledger.BalanceLabel(prev))
}

func TestRecordSaleRejectsBadCalls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.RecordSale(ctx, f.customer, SaleInput{UserID: f.customer.ID, Qty: d("1"), Price: d("80")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.ledger.RecordSale(ctx, f.admin, SaleInput{UserID: "ghost", Qty: d("1"), Price: d("80")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ledger.RecordSale(ctx, f.admin, SaleInput{UserID: f.customer.ID, Qty: d("-1"), Price: d("80")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	f.kv.FailSave = errors.New("disk full")
	_, err = f.ledger.RecordSale(ctx, f.admin, SaleInput{UserID: f.customer.ID, Qty: d("1"), Price: d("80")})
	assert.Error(t, err)

	assert.Empty(t, f.dir.Transactions())
	customer, err := f.dir.User(f.customer.ID)
	require.NoError(t, err)
	assert.True(t, customer.Balance.IsZero())
	assert.Empty(t, f.published)
}

func TestRecordSaleRefreshesSignedInCopies(t *testing.T) {
	f := newFixture(t)
	tab := f.login(t, "2222@gmail.com", "2222")

	_, err := f.ledger.RecordSale(context.Background(), f.admin, SaleInput{
		UserID: f.customer.ID, Qty: d("2"), Price: d("80"), Received: d("100"),
	})
	require.NoError(t, err)

	current, ok := tab.Current()
	require.True(t, ok)
	assert.True(t, current.Balance.Equal(d("60")))
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.RecordSale(ctx, f.admin, SaleInput{UserID: f.customer.ID, Date: "2024-02-28", Qty: d("2"), Price: d("80")})
	require.NoError(t, err)

	tx, err := f.ledger.RecordPayment(ctx, f.admin, PaymentInput{UserID: f.customer.ID, Amount: d("200")})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPayment, tx.Type)
	assert.True(t, tx.Qty.IsZero())
	assert.True(t, tx.PrevBalance.Equal(d("160")))
	assert.True(t, tx.FinalBalance.Equal(d("-40")))

	_, err = f.ledger.RecordPayment(ctx, f.admin, PaymentInput{UserID: f.customer.ID, Amount: d("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.ledger.RecordPayment(ctx, f.admin, PaymentInput{UserID: f.customer.ID, Amount: d("-5")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	assert.Contains(t, f.eventTypes(), events.EventPaymentRecorded)
}

func TestHistoryAndRecentActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.users.Create(ctx, f.admin, domain.User{Username: "rahim", Email: "rahim@farm.test", Password: "x"})
	require.NoError(t, err)

	first, err := f.ledger.RecordSale(ctx, f.admin, SaleInput{UserID: f.customer.ID, Date: "2024-12-31", Qty: d("1"), Price: d("80")})
	require.NoError(t, err)
	_, err = f.ledger.RecordSale(ctx, f.admin, SaleInput{UserID: other.ID, Qty: d("1"), Price: d("80")})
	require.NoError(t, err)
	last, err := f.ledger.RecordSale(ctx, f.admin, SaleInput{UserID: f.customer.ID, Date: "2023-01-01", Qty: d("2"), Price: d("80")})
	require.NoError(t, err)

	own, err := f.ledger.History(ctx, f.customer, "", 0)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, last.ID, own[0].ID)
	assert.Equal(t, first.ID, own[1].ID)

	_, err = f.ledger.History(ctx, f.customer, other.ID, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.ledger.History(ctx, f.admin, "ghost", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	recent, err := f.ledger.RecentActivity(ctx, f.admin, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, last.ID, recent[0].ID)
	assert.Equal(t, other.ID, recent[1].UserID)

	_, err = f.ledger.RecentActivity(ctx, f.customer, 5)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.users.Create(ctx, f.admin, domain.User{Username: "rahim", Email: "rahim@farm.test"})
	require.NoError(t, err)
	_, err = f.ledger.RecordSale(ctx, f.admin, SaleInput{UserID: f.customer.ID, Qty: d("2"), Price: d("80"), Received: d("100")})
	require.NoError(t, err)
	_, err = f.ledger.RecordPayment(ctx, f.admin, PaymentInput{UserID: other.ID, Amount: d("25")})
	require.NoError(t, err)

	sum, err := f.ledger.Summary(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Customers)
	assert.True(t, sum.TotalDue.Equal(d("60")))
	assert.True(t, sum.TotalAdvance.Equal(d("25")))

	_, err = f.ledger.Summary(ctx, f.customer)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
