package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/models"
)

var hundred = decimal.NewFromInt(100)

// EqualSplits divides an expense amount evenly among the given users. The
// division is exact: amounts are floored to cents and leftover cents are
// handed out one per user in user-ID order, so the splits always sum to the
// full amount and pass expense validation.
func EqualSplits(amount decimal.Decimal, userIDs []string) ([]models.Split, error) {
	if len(userIDs) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be positive, got %s", amount)
	}

	ids := make([]string, len(userIDs))
	copy(ids, userIDs)
	sort.Strings(ids)

	n := decimal.NewFromInt(int64(len(ids)))
	base := amount.Div(n).RoundDown(2)
	leftover := amount.Sub(base.Mul(n))
	cent := decimal.RequireFromString("0.01")

	splits := make([]models.Split, len(ids))
	for i, id := range ids {
		share := base
		if leftover.GreaterThanOrEqual(cent) {
			share = share.Add(cent)
			leftover = leftover.Sub(cent)
		}
		splits[i] = models.Split{
			UserID:  id,
			Amount:  share,
			Percent: share.Div(amount).Mul(hundred).Round(2),
		}
	}
	return splits, nil
}

// PercentShare assigns a user a percentage of an expense.
type PercentShare struct {
	UserID  string
	Percent decimal.Decimal
}

// PercentSplits divides an expense amount by percentage shares. Shares must
// sum to 100 within 0.01. Each split is rounded to cents; the last user
// (in input order) absorbs the rounding remainder so the splits sum exactly
// to the amount.
func PercentSplits(amount decimal.Decimal, shares []PercentShare) ([]models.Split, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("must have at least one share")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be positive, got %s", amount)
	}

	total := decimal.Zero
	for _, s := range shares {
		if s.Percent.IsNegative() {
			return nil, fmt.Errorf("share for %s is negative", s.UserID)
		}
		total = total.Add(s.Percent)
	}
	if total.Sub(hundred).Abs().GreaterThan(amountEpsilon) {
		return nil, fmt.Errorf("shares must sum to 100, got %s", total)
	}

	splits := make([]models.Split, len(shares))
	assigned := decimal.Zero
	for i, s := range shares {
		var share decimal.Decimal
		if i == len(shares)-1 {
			share = amount.Sub(assigned)
		} else {
			share = amount.Mul(s.Percent).Div(hundred).Round(2)
			assigned = assigned.Add(share)
		}
		splits[i] = models.Split{
			UserID:  s.UserID,
			Amount:  share,
			Percent: s.Percent,
		}
	}
	return splits, nil
}
