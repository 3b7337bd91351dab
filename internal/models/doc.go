// Package models defines the core domain records for Tabsplit.
//
// # Records
//
//   - Group: a set of members who share expenses, with a base currency
//   - Expense: an obligation record with one payer and a set of splits
//   - Settlement: a payment between two members, pending or completed
//
// # Derived values (never persisted)
//
//   - Balance: net signed amount per (user, currency)
//   - Payment: one entry of a simplified payment plan
//
// Balances and plans are always recomputed from the stored records; nothing
// derived is ever written back. Invalidation after an edit or delete is free
// because there is no cached state to invalidate.
//
// # Money
//
// All monetary values use decimal.Decimal. Comparisons in the calculator use
// the tolerances defined there, not exact equality.
package models
