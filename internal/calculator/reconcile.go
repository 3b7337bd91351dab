package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/fx"
)

// driftRatio bounds the acceptable post-reconciliation deviation from zero,
// as a fraction of total converted volume. Internally inconsistent rates
// (non-reciprocal A->B vs B->A) can move the sum off zero; anything beyond
// this bound is rejected rather than silently accepted.
var driftRatio = decimal.RequireFromString("0.01")

// Reconcile converts every per-currency balance into the target currency and
// sums them per user, producing one unified balance map that can be fed to
// Simplify for a single cross-currency plan.
//
// The input is not mutated; the per-currency balances remain the
// currency-faithful source of truth and stay independently available.
//
// A missing rate for any present currency is an error. After conversion the
// unified balances must still sum to approximately zero; drift beyond
// max(0.01, 1% of converted volume) is reported as ErrUnbalancedLedger.
func Reconcile(byCurrency Balances, target string, rates fx.Table) (map[string]decimal.Decimal, error) {
	unified := make(map[string]decimal.Decimal)
	volume := decimal.Zero

	for currency, users := range byCurrency {
		rate, err := rates.Rate(currency, target)
		if err != nil {
			return nil, fmt.Errorf("cannot reconcile %s into %s: %w", currency, target, err)
		}
		for userID, amount := range users {
			converted := amount.Mul(rate)
			unified[userID] = unified[userID].Add(converted)
			volume = volume.Add(converted.Abs())
		}
	}

	drift := decimal.Zero
	for _, amount := range unified {
		drift = drift.Add(amount)
	}
	allowed := decimal.Max(sumTolerance, volume.Mul(driftRatio))
	if drift.Abs().GreaterThan(allowed) {
		return nil, fmt.Errorf("%w: reconciled into %s with drift %s (allowed %s)",
			ErrUnbalancedLedger, target, drift, allowed)
	}

	for userID, amount := range unified {
		if amount.Abs().LessThan(zeroEpsilon) {
			delete(unified, userID)
		}
	}
	return unified, nil
}
