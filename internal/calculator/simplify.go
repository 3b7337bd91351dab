package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/models"
)

// ErrUnbalancedLedger indicates that a currency's balances do not sum to zero
// within tolerance. This is a ledger invariant violation: the simplifier
// refuses to produce a plan from corrupt input.
var ErrUnbalancedLedger = errors.New("ledger balances do not sum to zero")

// party is one side of the matching, a user with a positive remaining amount.
type party struct {
	userID string
	amount decimal.Decimal
}

// Simplify turns one currency's net balances into an ordered payment plan.
//
// The algorithm is greedy largest-pair matching: repeatedly pair the creditor
// owed the most with the debtor owing the most, and transfer the smaller of
// the two amounts. Ties break toward the lower user ID so output is
// reproducible. This is the standard cash-flow heuristic; it is not a proven
// minimum transaction count, but it terminates in at most N-1 payments for N
// non-zero balances.
//
// Emitted amounts are rounded half-up to two decimal places. Sub-cent
// rounding residue is folded into the final payment instead of being left
// unsettled.
func Simplify(balances map[string]decimal.Decimal, currency string) ([]models.Payment, error) {
	sum := decimal.Zero
	var creditors, debtors []party
	for userID, amount := range balances {
		sum = sum.Add(amount)
		switch {
		case amount.GreaterThanOrEqual(zeroEpsilon):
			creditors = append(creditors, party{userID, amount})
		case amount.Neg().GreaterThanOrEqual(zeroEpsilon):
			debtors = append(debtors, party{userID, amount.Neg()})
		}
	}

	if sum.Abs().GreaterThan(sumTolerance) {
		return nil, fmt.Errorf("%w: %s off by %s", ErrUnbalancedLedger, currency, sum)
	}

	var plan []models.Payment
	residue := decimal.Zero

	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largest(creditors)
		di := largest(debtors)
		creditor := &creditors[ci]
		debtor := &debtors[di]

		transfer := decimal.Min(creditor.amount, debtor.amount)

		emitted := transfer
		if len(creditors) == 1 && len(debtors) == 1 {
			// Final pairing: fold in accumulated rounding residue.
			emitted = emitted.Add(residue)
		}
		// Round half-up; amounts here are always positive, so half away
		// from zero is the same thing.
		emitted = emitted.Round(2)
		residue = residue.Add(transfer.Sub(emitted))

		if emitted.GreaterThanOrEqual(zeroEpsilon) {
			plan = append(plan, models.Payment{
				FromUserID: debtor.userID,
				ToUserID:   creditor.userID,
				Amount:     emitted,
				Currency:   currency,
			})
		}

		creditor.amount = creditor.amount.Sub(transfer)
		debtor.amount = debtor.amount.Sub(transfer)

		if creditor.amount.LessThan(zeroEpsilon) {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
		if debtor.amount.LessThan(zeroEpsilon) {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
	}

	return plan, nil
}

// largest returns the index of the party with the greatest remaining amount,
// breaking ties toward the lower user ID.
func largest(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		switch parties[i].amount.Cmp(parties[best].amount) {
		case 1:
			best = i
		case 0:
			if parties[i].userID < parties[best].userID {
				best = i
			}
		}
	}
	return best
}
