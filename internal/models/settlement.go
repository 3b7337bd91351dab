package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidSettlement is returned when a settlement fails validation.
var ErrInvalidSettlement = errors.New("invalid settlement")

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	// SettlementPending is a suggested payment that has not happened yet.
	// Pending settlements never affect balances.
	SettlementPending SettlementStatus = "pending"

	// SettlementCompleted is a payment that actually took place. Once
	// completed, amount, currency and parties are immutable; deletion by an
	// authorized actor is the only correction path.
	SettlementCompleted SettlementStatus = "completed"
)

// Settlement represents one payment between two group members.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal

	// Currency is the 3-letter code the payment was made in.
	Currency string

	// Status is pending or completed.
	Status SettlementStatus

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CompletedAt is the Unix timestamp of completion, zero while pending.
	CompletedAt int64

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// Note is an optional free-text description.
	Note string
}

// Validate checks the settlement invariants.
func (s *Settlement) Validate() error {
	if s.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidSettlement, s.Amount)
	}
	if s.FromUserID == "" || s.ToUserID == "" {
		return fmt.Errorf("%w: both parties required", ErrInvalidSettlement)
	}
	if s.FromUserID == s.ToUserID {
		return fmt.Errorf("%w: parties must differ, got %s on both sides", ErrInvalidSettlement, s.FromUserID)
	}
	if len(s.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code, got %q", ErrInvalidSettlement, s.Currency)
	}
	switch s.Status {
	case SettlementPending, SettlementCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSettlement, s.Status)
	}
	return nil
}
