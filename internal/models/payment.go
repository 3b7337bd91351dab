package models

import "github.com/shopspring/decimal"

// Payment is one entry of a simplified payment plan: FromUserID should pay
// ToUserID the given amount in the given currency. Payments are ephemeral;
// they are only persisted when a user acts on one, which produces a
// Settlement.
type Payment struct {
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
	Currency   string
}

// Balance is a derived net position for one user in one currency.
// Positive means the user is owed money; negative means the user owes.
type Balance struct {
	UserID   string
	Currency string
	Amount   decimal.Decimal
}
