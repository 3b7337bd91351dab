// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/tabsplit/tabsplit/internal/models"
)

// ErrNotFound indicates that a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateSettlement indicates that an equivalent completed settlement
// already exists. Callers treat this as idempotent success, not a failure:
// the payment the user wanted recorded is recorded.
var ErrDuplicateSettlement = errors.New("equivalent completed settlement already recorded")

// Snapshot is a consistent view of one group's records, read at a single
// point in time. The balance calculator always works from a Snapshot so it
// can never observe a partially applied settlement.
type Snapshot struct {
	Group       *models.Group
	Expenses    []models.Expense
	Settlements []models.Settlement
}

// Store defines the persistence interface for groups, expenses and
// settlements. This abstraction keeps the settlement engine independent of
// the storage backend.
type Store interface {
	// CreateGroup persists a new group, populating ID and CreatedAt.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// UpdateGroup replaces a group's name and member set.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and all of its records.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddGroupMembers adds members not already in the group.
	AddGroupMembers(ctx context.Context, groupID string, members []models.Member) error

	// CreateExpense persists a new expense, populating ID and CreatedAt.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup retrieves all expenses for a group, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// UpdateExpense replaces an expense's mutable fields and splits.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense and its splits.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateSettlement persists a settlement suggestion or record as-is.
	// Use AppendCompletedSettlement for marking a plan entry paid.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup retrieves all settlements for a group.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error)

	// AppendCompletedSettlement atomically records a completed settlement,
	// failing with ErrDuplicateSettlement if an equivalent completed
	// settlement (same parties, same currency, amount within tolerance)
	// already exists. The duplicate check and the insert happen inside one
	// write transaction, closing the race between check and append.
	AppendCompletedSettlement(ctx context.Context, settlement *models.Settlement) error

	// DeleteSettlement removes a settlement. This is the correction path
	// for completed settlements, which are otherwise immutable.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// Snapshot reads all records for a group in one consistent view.
	Snapshot(ctx context.Context, groupID string) (*Snapshot, error)

	// Close releases any resources held by the store.
	Close() error
}
