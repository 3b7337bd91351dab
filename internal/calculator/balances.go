// Package calculator implements the settlement engine: computing per-currency
// net balances from the obligation ledger, simplifying them into a minimal
// payment plan, reconciling balances across currencies, and guarding against
// duplicate settlement recording.
//
// Everything in this package is a pure function of its inputs. Nothing is
// cached and nothing is mutated, so recomputing after every change to the
// underlying records is always safe.
package calculator

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/models"
)

var (
	// zeroEpsilon is the magnitude below which a balance is treated as
	// exactly zero. Anything smaller is rounding noise.
	zeroEpsilon = decimal.RequireFromString("0.005")

	// sumTolerance is the maximum acceptable deviation of a currency's
	// balance sum from zero before the ledger is considered corrupt.
	sumTolerance = decimal.RequireFromString("0.01")

	// amountEpsilon is the tolerance used when matching a proposed payment
	// against recorded settlement amounts.
	amountEpsilon = decimal.RequireFromString("0.01")
)

// Balances maps currency code to user ID to net amount. Positive means the
// user is owed money, negative means the user owes.
type Balances map[string]map[string]decimal.Decimal

// ComputeBalances projects the group's obligation records into per-currency
// net balances.
//
// For each expense the payer's balance in the expense currency goes up by the
// full amount and each split user's balance goes down by their share.
// Balances stay in the original transaction currency; the stored
// base-currency equivalent never enters this computation, because converting
// here would break per-currency conservation.
//
// Completed settlements move money back: the paying side's debt shrinks and
// the receiving side's claim shrinks. Pending settlements are advisory and
// have no effect.
//
// Balances with magnitude below 0.005 are dropped from the output. Callers
// that want zero rows for inactive members seed them from the membership
// list at presentation time.
func ComputeBalances(members []models.Member, expenses []models.Expense, settlements []models.Settlement) Balances {
	balances := make(Balances)

	ensure := func(currency, userID string) {
		if balances[currency] == nil {
			balances[currency] = make(map[string]decimal.Decimal)
			for _, m := range members {
				balances[currency][m.UserID] = decimal.Zero
			}
		}
		if _, ok := balances[currency][userID]; !ok {
			balances[currency][userID] = decimal.Zero
		}
	}

	for _, e := range expenses {
		currency := strings.ToUpper(e.Currency)
		ensure(currency, e.PayerID)
		balances[currency][e.PayerID] = balances[currency][e.PayerID].Add(e.Amount)

		for _, split := range e.Splits {
			ensure(currency, split.UserID)
			balances[currency][split.UserID] = balances[currency][split.UserID].Sub(split.Amount)
		}
	}

	for _, s := range settlements {
		if s.Status != models.SettlementCompleted {
			continue
		}
		currency := strings.ToUpper(s.Currency)
		ensure(currency, s.FromUserID)
		ensure(currency, s.ToUserID)
		balances[currency][s.FromUserID] = balances[currency][s.FromUserID].Add(s.Amount)
		balances[currency][s.ToUserID] = balances[currency][s.ToUserID].Sub(s.Amount)
	}

	// Drop rounding noise and empty currencies.
	for currency, users := range balances {
		for userID, amount := range users {
			if amount.Abs().LessThan(zeroEpsilon) {
				delete(users, userID)
			}
		}
		if len(users) == 0 {
			delete(balances, currency)
		}
	}

	return balances
}
