package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidExpense indicates an expense that failed validation. Invalid
// expenses are rejected at creation or edit time and never enter the ledger.
var ErrInvalidExpense = errors.New("invalid expense")

// SplitTolerance is the maximum allowed gap between the expense amount and
// the sum of its split amounts, in currency units.
var SplitTolerance = decimal.RequireFromString("0.01")

// Split is one member's share of an expense.
type Split struct {
	// UserID is the member who owes this share.
	UserID string

	// Amount is the owed amount, in the expense currency.
	Amount decimal.Decimal

	// Percent is the owed share as a percentage of the expense amount.
	// Informational; Amount is authoritative for balance computation.
	Percent decimal.Decimal
}

// Expense is an obligation record: one payer, a set of splits.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is a short human-readable label.
	Description string

	// Amount is the total expense amount in Currency.
	Amount decimal.Decimal

	// Currency is the 3-letter code of the transaction currency. Balances
	// derived from this expense are tracked in this currency, never in the
	// base-currency equivalent.
	Currency string

	// BaseAmount is the equivalent in the group's base currency, computed
	// once from the rate snapshot at creation time and never recomputed.
	BaseAmount decimal.Decimal

	// BaseCurrency is the group base currency BaseAmount is denominated in.
	BaseCurrency string

	// PayerID is the single member who paid the expense.
	PayerID string

	// Splits is who owes what. At least one entry, no duplicate users, and
	// the amounts must sum to Amount within SplitTolerance.
	Splits []Split

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this expense.
	CreatedBy string
}

// Validate checks the expense invariants. It is called on create and on every
// edit; the same rules apply to both.
func (e *Expense) Validate() error {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidExpense, e.Amount)
	}
	if len(e.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code, got %q", ErrInvalidExpense, e.Currency)
	}
	if e.PayerID == "" {
		return fmt.Errorf("%w: payer required", ErrInvalidExpense)
	}
	if len(e.Splits) == 0 {
		return fmt.Errorf("%w: at least one split required", ErrInvalidExpense)
	}

	seen := make(map[string]bool, len(e.Splits))
	sum := decimal.Zero
	for _, s := range e.Splits {
		if s.UserID == "" {
			return fmt.Errorf("%w: split user required", ErrInvalidExpense)
		}
		if seen[s.UserID] {
			return fmt.Errorf("%w: duplicate split user %s", ErrInvalidExpense, s.UserID)
		}
		seen[s.UserID] = true
		if s.Amount.IsNegative() {
			return fmt.Errorf("%w: split amount for %s is negative", ErrInvalidExpense, s.UserID)
		}
		sum = sum.Add(s.Amount)
	}

	if sum.Sub(e.Amount).Abs().GreaterThan(SplitTolerance) {
		return fmt.Errorf("%w: splits sum to %s, expense amount is %s", ErrInvalidExpense, sum, e.Amount)
	}
	return nil
}
