package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/farm-portal/internal/domain"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestComputeCustomerScenario(t *testing.T) {
	entry, err := Compute(decimal.Zero, Input{Qty: d("2"), Price: d("80"), Received: d("100")})
	require.NoError(t, err)

	assert.True(t, entry.Total.Equal(d("160")))
	assert.True(t, entry.PrevBalance.Equal(decimal.Zero))
	assert.True(t, entry.FinalBalance.Equal(d("60")))
	assert.Equal(t, LabelDue, BalanceLabel(entry.FinalBalance))
}

func TestComputeRejectsNegativeAmounts(t *testing.T) {
	cases := map[string]Input{
		"qty":      {Qty: d("-1"), Price: d("80")},
		"price":    {Qty: d("1"), Price: d("-80")},
		"received": {Qty: d("1"), Price: d("80"), Received: d("-5")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Compute(d("10"), in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidAmount))
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestApplyChainsBalances(t *testing.T) {
	user := &domain.User{ID: "2", Balance: decimal.Zero}
	inputs := []Input{
		{Date: "2024-01-03", Qty: d("2"), Price: d("80"), Received: d("100")},
		{Date: "2024-01-01", Qty: d("1.5"), Price: d("80"), Received: d("0")},
		Payment("2024-01-02", d("500")),
		{Date: "2024-01-04", Qty: d("0"), Price: d("80"), Received: d("0")},
	}

	var txs []domain.Transaction
	for i, in := range inputs {
		tx, err := Apply(user, string(rune('a'+i)), domain.TransactionSale, in)
		require.NoError(t, err)
		txs = append(txs, tx)
	}

	prev := decimal.Zero
	for _, tx := range txs {
		assert.True(t, tx.PrevBalance.Equal(prev), "tx %s prev %s want %s", tx.ID, tx.PrevBalance, prev)
		want := tx.PrevBalance.Add(tx.Qty.Mul(tx.Price)).Sub(tx.Received)
		assert.True(t, tx.FinalBalance.Equal(want))
		prev = tx.FinalBalance
	}
	assert.True(t, user.Balance.Equal(d("-320")))
	assert.Equal(t, LabelCredit, BalanceLabel(user.Balance))
}

func TestApplyLeavesUserUntouchedOnError(t *testing.T) {
	user := &domain.User{ID: "2", Balance: d("40")}
	_, err := Apply(user, "tx", domain.TransactionSale, Input{Qty: d("1"), Price: d("1"), Received: d("-1")})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.True(t, user.Balance.Equal(d("40")))
}

func TestNewestUsesInsertionOrder(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", UserID: "a", Date: "2024-05-01"},
		{ID: "2", UserID: "b", Date: "2024-01-01"},
		{ID: "3", UserID: "a", Date: "2023-01-01"},
		{ID: "4", UserID: "a", Date: "2025-01-01"},
	}

	got := Newest(txs, "a", 0)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"4", "3", "1"}, []string{got[0].ID, got[1].ID, got[2].ID})

	all := Newest(txs, "", 2)
	require.Len(t, all, 2)
	assert.Equal(t, "4", all[0].ID)
	assert.Equal(t, "3", all[1].ID)
}

func TestSummarize(t *testing.T) {
	users := []domain.User{
		{ID: "1", Role: domain.RoleAdmin, Balance: d("500")},
		{ID: "5", Role: domain.RoleAdmin, Balance: d("-40")},
		{ID: "2", Role: domain.RoleUser, Balance: d("60")},
		{ID: "3", Role: domain.RoleUser, Balance: d("-25.5")},
		{ID: "4", Role: domain.RoleUser, Balance: d("15")},
	}
	s := Summarize(users)
	assert.Equal(t, 3, s.Customers)
	assert.True(t, s.TotalDue.Equal(d("75")))
	assert.True(t, s.TotalAdvance.Equal(d("25.5")))
}
