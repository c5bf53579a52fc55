package settlement_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	"github.com/splitnest/splitnest_backend/internal/utils/settlement"
)

func registered(id string) domain.MemberRef {
	return domain.MemberRef{ID: id, Kind: domain.MemberRegistered}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// expense builds an unsettled expense paid by payer with the given shares.
// The payer's own share, if present, is marked paid.
func expense(payer string, amount string, shares map[string]string) domain.Expense {
	exp := domain.Expense{
		Amount:    dec(amount),
		PaidBy:    registered(payer),
		IsSettled: false,
	}
	for id, share := range shares {
		exp.Participants = append(exp.Participants, domain.ExpenseParticipant{
			Member:     registered(id),
			AmountOwed: dec(share),
			IsPaid:     id == payer,
		})
	}
	return exp
}

func balanceOf(t *testing.T, balances []domain.Balance, id string) decimal.Decimal {
	t.Helper()
	for _, b := range balances {
		if b.Member.ID == id {
			return b.Amount
		}
	}
	t.Fatalf("no balance for member %s", id)
	return decimal.Zero
}

func TestEqualShares(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		n      int
		want   []string
	}{
		{"even split", "90", 3, []string{"30", "30", "30"}},
		{"remainder on first share", "100", 3, []string{"33.34", "33.33", "33.33"}},
		{"two way", "0.03", 2, []string{"0.01", "0.02"}},
		{"single participant", "12.50", 1, []string{"12.50"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := settlement.EqualShares(dec(tt.amount), tt.n)
			require.Len(t, shares, tt.n)

			sum := decimal.Zero
			for i, share := range shares {
				assert.True(t, share.Equal(dec(tt.want[i])), "share %d: got %s want %s", i, share, tt.want[i])
				sum = sum.Add(share)
			}
			assert.True(t, sum.Equal(dec(tt.amount)), "shares must sum exactly to the amount, got %s", sum)
		})
	}

	assert.Nil(t, settlement.EqualShares(dec("10"), 0))
}

func TestValidateShares(t *testing.T) {
	t.Run("exact sum accepted", func(t *testing.T) {
		err := settlement.ValidateShares(dec("100"), []decimal.Decimal{dec("40"), dec("30"), dec("30")})
		assert.NoError(t, err)
	})

	// 99.995 against 100.00 is inside the one-cent tolerance.
	t.Run("sum within one cent accepted", func(t *testing.T) {
		err := settlement.ValidateShares(dec("100.00"), []decimal.Decimal{dec("33.335"), dec("33.33"), dec("33.33")})
		assert.NoError(t, err)
	})

	t.Run("sum outside tolerance rejected", func(t *testing.T) {
		err := settlement.ValidateShares(dec("100.00"), []decimal.Decimal{dec("40"), dec("30"), dec("25")})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("negative share rejected", func(t *testing.T) {
		err := settlement.ValidateShares(dec("10"), []decimal.Decimal{dec("20"), dec("-10")})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("empty participant list rejected", func(t *testing.T) {
		err := settlement.ValidateShares(dec("10"), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestComputeBalancesEqualSplit(t *testing.T) {
	// 90 split equally among A, B, C, paid by A.
	members := []domain.MemberRef{registered("A"), registered("B"), registered("C")}
	expenses := []domain.Expense{
		expense("A", "90", map[string]string{"A": "30", "B": "30", "C": "30"}),
	}

	balances := settlement.ComputeBalances(members, expenses)
	require.Len(t, balances, 3)

	assert.True(t, balanceOf(t, balances, "A").Equal(dec("60")))
	assert.True(t, balanceOf(t, balances, "B").Equal(dec("-30")))
	assert.True(t, balanceOf(t, balances, "C").Equal(dec("-30")))
}

func TestComputeBalancesCustomSplit(t *testing.T) {
	// 100 split {A:40, B:30, C:30}, paid by B.
	members := []domain.MemberRef{registered("A"), registered("B"), registered("C")}
	expenses := []domain.Expense{
		expense("B", "100", map[string]string{"A": "40", "B": "30", "C": "30"}),
	}

	balances := settlement.ComputeBalances(members, expenses)

	assert.True(t, balanceOf(t, balances, "A").Equal(dec("-40")))
	assert.True(t, balanceOf(t, balances, "B").Equal(dec("70")))
	assert.True(t, balanceOf(t, balances, "C").Equal(dec("-30")))
}

func TestComputeBalancesExcludesSettledExpenses(t *testing.T) {
	// A settled expense contributes nothing, even for
	// participants whose shares were never individually paid.
	members := []domain.MemberRef{registered("A"), registered("B")}
	settled := expense("A", "50", map[string]string{"A": "25", "B": "25"})
	settled.IsSettled = true

	balances := settlement.ComputeBalances(members, []domain.Expense{settled})

	assert.True(t, balanceOf(t, balances, "A").IsZero())
	assert.True(t, balanceOf(t, balances, "B").IsZero())
}

func TestComputeBalancesSkipsRepaidShares(t *testing.T) {
	// B has repaid their share directly; only C's share remains outstanding,
	// and the totals still conserve.
	members := []domain.MemberRef{registered("A"), registered("B"), registered("C")}
	exp := expense("A", "90", map[string]string{"A": "30", "B": "30", "C": "30"})
	for i := range exp.Participants {
		if exp.Participants[i].Member.ID == "B" {
			exp.Participants[i].IsPaid = true
		}
	}

	balances := settlement.ComputeBalances(members, []domain.Expense{exp})

	assert.True(t, balanceOf(t, balances, "A").Equal(dec("30")))
	assert.True(t, balanceOf(t, balances, "B").IsZero())
	assert.True(t, balanceOf(t, balances, "C").Equal(dec("-30")))

	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Amount)
	}
	assert.True(t, sum.IsZero())
}

func TestComputeBalancesIgnoresFormerMembers(t *testing.T) {
	// D paid and owes but is no longer in the group; their rows are skipped.
	members := []domain.MemberRef{registered("A"), registered("B")}
	expenses := []domain.Expense{
		expense("A", "30", map[string]string{"A": "10", "B": "10", "D": "10"}),
		expense("D", "20", map[string]string{"A": "10", "B": "10"}),
	}

	balances := settlement.ComputeBalances(members, expenses)
	require.Len(t, balances, 2)

	assert.True(t, balanceOf(t, balances, "A").Equal(dec("10")))
	assert.True(t, balanceOf(t, balances, "B").Equal(dec("-20")))
}

func TestComputeBalancesConservation(t *testing.T) {
	// With every participant present, balances always sum to zero.
	members := []domain.MemberRef{registered("A"), registered("B"), registered("C"), registered("D")}
	expenses := []domain.Expense{
		expense("A", "100", map[string]string{"A": "33.34", "B": "33.33", "C": "33.33"}),
		expense("B", "59.99", map[string]string{"B": "20.00", "C": "19.99", "D": "20.00"}),
		expense("C", "12.30", map[string]string{"A": "6.15", "D": "6.15"}),
	}

	balances := settlement.ComputeBalances(members, expenses)

	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Amount)
	}
	assert.True(t, sum.IsZero(), "balances should conserve, got %s", sum)
}

func TestMinimizeTransfersSingleCreditor(t *testing.T) {
	balances := []domain.Balance{
		{Member: registered("A"), Amount: dec("60")},
		{Member: registered("B"), Amount: dec("-30")},
		{Member: registered("C"), Amount: dec("-30")},
	}

	transfers, err := settlement.MinimizeTransfers(balances)
	require.NoError(t, err)
	require.Len(t, transfers, 2)

	// B and C have equal debts; input order breaks the tie.
	assert.Equal(t, "B", transfers[0].From.ID)
	assert.Equal(t, "A", transfers[0].To.ID)
	assert.True(t, transfers[0].Amount.Equal(dec("30")))

	assert.Equal(t, "C", transfers[1].From.ID)
	assert.Equal(t, "A", transfers[1].To.ID)
	assert.True(t, transfers[1].Amount.Equal(dec("30")))
}

func TestMinimizeTransfersMultipleDebtors(t *testing.T) {
	balances := []domain.Balance{
		{Member: registered("A"), Amount: dec("-40")},
		{Member: registered("B"), Amount: dec("70")},
		{Member: registered("C"), Amount: dec("-30")},
	}

	transfers, err := settlement.MinimizeTransfers(balances)
	require.NoError(t, err)
	require.Len(t, transfers, 2)

	assert.Equal(t, "A", transfers[0].From.ID)
	assert.Equal(t, "B", transfers[0].To.ID)
	assert.True(t, transfers[0].Amount.Equal(dec("40")))

	assert.Equal(t, "C", transfers[1].From.ID)
	assert.Equal(t, "B", transfers[1].To.ID)
	assert.True(t, transfers[1].Amount.Equal(dec("30")))
}

func TestMinimizeTransfersZeroesEveryBalance(t *testing.T) {
	balances := []domain.Balance{
		{Member: registered("A"), Amount: dec("123.45")},
		{Member: registered("B"), Amount: dec("-23.45")},
		{Member: registered("C"), Amount: dec("-80.00")},
		{Member: registered("D"), Amount: dec("-20.00")},
		{Member: registered("E"), Amount: dec("0")},
	}

	transfers, err := settlement.MinimizeTransfers(balances)
	require.NoError(t, err)

	// Boundedness: at most one fewer transfer than nonzero balances.
	assert.LessOrEqual(t, len(transfers), 3)

	// Correctness: applying the transfers cancels every original balance.
	residual := map[string]decimal.Decimal{
		"A": dec("123.45"), "B": dec("-23.45"), "C": dec("-80.00"), "D": dec("-20.00"), "E": dec("0"),
	}
	for _, tr := range transfers {
		residual[tr.From.ID] = residual[tr.From.ID].Add(tr.Amount)
		residual[tr.To.ID] = residual[tr.To.ID].Sub(tr.Amount)
	}
	for id, r := range residual {
		assert.True(t, r.Abs().LessThanOrEqual(dec("0.01")), "member %s residual %s", id, r)
	}
}

func TestMinimizeTransfersDropsNoiseBalances(t *testing.T) {
	balances := []domain.Balance{
		{Member: registered("A"), Amount: dec("0.005")},
		{Member: registered("B"), Amount: dec("-0.005")},
	}

	transfers, err := settlement.MinimizeTransfers(balances)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestMinimizeTransfersRejectsUnbalancedVector(t *testing.T) {
	balances := []domain.Balance{
		{Member: registered("A"), Amount: dec("50")},
		{Member: registered("B"), Amount: dec("-30")},
	}

	_, err := settlement.MinimizeTransfers(balances)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvariantViolation)
}

func TestMinimizeTransfersEmptyInput(t *testing.T) {
	transfers, err := settlement.MinimizeTransfers(nil)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}
