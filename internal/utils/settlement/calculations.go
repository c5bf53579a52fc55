package settlement

import (
	"fmt"
	"sort"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Tolerance is the rounding slack applied to every monetary comparison:
// share sums, balance conservation, and settlement emission all treat
// anything within one cent as zero.
var Tolerance = decimal.NewFromFloat(0.01)

func memberKey(ref domain.MemberRef) string {
	return string(ref.Kind) + ":" + ref.ID
}

// EqualShares splits amount into n shares that sum exactly to amount.
// Each share is amount/n rounded to two decimal places; the rounding
// remainder lands on the first share.
func EqualShares(amount decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	base := amount.DivRound(decimal.NewFromInt(int64(n)), 2)
	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = base
	}
	shares[0] = amount.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
	return shares
}

// ValidateShares checks the split invariant for one expense: every share is
// non-negative and the shares sum to the expense amount within Tolerance.
func ValidateShares(amount decimal.Decimal, shares []decimal.Decimal) error {
	if len(shares) == 0 {
		return fmt.Errorf("%w: expense must have at least one participant", apperrors.ErrValidation)
	}
	sum := decimal.Zero
	for i, share := range shares {
		if share.IsNegative() {
			return fmt.Errorf("%w: participant share %d is negative (%s)", apperrors.ErrValidation, i, share.String())
		}
		sum = sum.Add(share)
	}
	if sum.Sub(amount).Abs().GreaterThan(Tolerance) {
		return fmt.Errorf("%w: participant shares sum to %s, expense amount is %s", apperrors.ErrValidation, sum.String(), amount.String())
	}
	return nil
}

// ComputeBalances derives each member's net position from the group's
// unsettled expenses. Each unpaid participant share credits the expense's
// payer and debits the participant by the same amount, so the balances sum
// to zero by construction. The payer's own share carries is_paid and drops
// out, as does any share repaid individually. Settled expenses contribute
// nothing. Only the given members appear in the result, in the given order;
// rows belonging to anyone no longer in the group are ignored.
func ComputeBalances(members []domain.MemberRef, expenses []domain.Expense) []domain.Balance {
	index := make(map[string]int, len(members))
	balances := make([]domain.Balance, len(members))
	for i, m := range members {
		index[memberKey(m)] = i
		balances[i] = domain.Balance{Member: m, Amount: decimal.Zero}
	}

	for _, exp := range expenses {
		if exp.IsSettled {
			continue
		}
		payer, payerPresent := index[memberKey(exp.PaidBy)]
		for _, p := range exp.Participants {
			if p.IsPaid {
				continue
			}
			if payerPresent {
				balances[payer].Amount = balances[payer].Amount.Add(p.AmountOwed)
			}
			if i, ok := index[memberKey(p.Member)]; ok {
				balances[i].Amount = balances[i].Amount.Sub(p.AmountOwed)
			}
		}
	}

	return balances
}

// MinimizeTransfers reduces a balance vector to a short list of transfers
// that zeroes every balance. It greedily matches the largest debtor against
// the largest creditor, so it terminates in at most len(balances)-1
// transfers. Ties keep the input order.
//
// The balance vector must conserve: if the balances do not sum to zero
// within Tolerance the data upstream is corrupt, and the function fails with
// apperrors.ErrInvariantViolation rather than guessing at a correction.
func MinimizeTransfers(balances []domain.Balance) ([]domain.Transfer, error) {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Amount)
	}
	if total.Abs().GreaterThan(Tolerance) {
		return nil, fmt.Errorf("%w: group balances sum to %s, expected zero", apperrors.ErrInvariantViolation, total.String())
	}

	var debtors, creditors []domain.Balance
	for _, b := range balances {
		switch {
		case b.Amount.LessThan(Tolerance.Neg()):
			debtors = append(debtors, b)
		case b.Amount.GreaterThan(Tolerance):
			creditors = append(creditors, b)
		}
	}

	// Most negative debtor and largest creditor first.
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].Amount.LessThan(debtors[j].Amount)
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].Amount.GreaterThan(creditors[j].Amount)
	})

	var transfers []domain.Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debt := debtors[i].Amount.Neg()
		credit := creditors[j].Amount

		amount := decimal.Min(debt, credit).Round(2)
		if amount.GreaterThan(Tolerance) {
			transfers = append(transfers, domain.Transfer{
				From:   debtors[i].Member,
				To:     creditors[j].Member,
				Amount: amount,
			})
		}

		debtors[i].Amount = debtors[i].Amount.Add(amount)
		creditors[j].Amount = creditors[j].Amount.Sub(amount)

		if debtors[i].Amount.Abs().LessThan(Tolerance) {
			i++
		}
		if creditors[j].Amount.Abs().LessThan(Tolerance) {
			j++
		}
	}

	return transfers, nil
}
