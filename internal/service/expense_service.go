package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tabsplit/tabsplit/internal/fx"
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

// ExpenseService manages obligation records.
type ExpenseService struct {
	store storage.Store
	rates fx.Source
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.Store, rates fx.Source) *ExpenseService {
	return &ExpenseService{store: store, rates: rates}
}

// CreateExpense validates and persists a new expense. The base-currency
// equivalent is computed here, once, from the current rate snapshot; it is
// stored on the record and never recomputed when rates change later.
//
// Split users and the payer that are not yet group members are added
// automatically, so a one-off participant does not block recording the
// expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	expense.Currency = strings.ToUpper(expense.Currency)
	if err := expense.Validate(); err != nil {
		slog.Error("CreateExpense validation failed", "group_id", expense.GroupID, "error", err)
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}

	baseAmount, err := s.rates.Rates().Convert(expense.Amount, expense.Currency, group.BaseCurrency)
	if err != nil {
		return nil, fmt.Errorf("cannot record %s expense in %s group: %w",
			expense.Currency, group.BaseCurrency, err)
	}
	expense.BaseAmount = baseAmount.Round(2)
	expense.BaseCurrency = group.BaseCurrency

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", expense.GroupID, "error", err)
		return nil, err
	}

	s.autoAddParticipants(ctx, group, expense)

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount.String(),
		"currency", expense.Currency,
	)
	return expense, nil
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, expenseID)
}

// ListExpenses retrieves all expenses for a group, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// UpdateExpense replaces an expense's amount, currency, payer and splits,
// re-validating the split-sum invariant. The base-currency equivalent is
// scaled from the creation-time rate implied by the stored record, so an
// edit never picks up a newer rate snapshot.
func (s *ExpenseService) UpdateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	expense.Currency = strings.ToUpper(expense.Currency)
	if err := expense.Validate(); err != nil {
		slog.Error("UpdateExpense validation failed", "expense_id", expense.ID, "error", err)
		return nil, err
	}

	existing, err := s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, err
	}

	expense.GroupID = existing.GroupID
	expense.BaseCurrency = existing.BaseCurrency
	expense.CreatedAt = existing.CreatedAt
	expense.CreatedBy = existing.CreatedBy

	if expense.Currency == existing.Currency {
		// Same creation-time rate, applied to the new amount.
		rate := existing.BaseAmount.Div(existing.Amount)
		expense.BaseAmount = expense.Amount.Mul(rate).Round(2)
	} else {
		baseAmount, err := s.rates.Rates().Convert(expense.Amount, expense.Currency, existing.BaseCurrency)
		if err != nil {
			return nil, fmt.Errorf("cannot change expense currency to %s: %w", expense.Currency, err)
		}
		expense.BaseAmount = baseAmount.Round(2)
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err == nil {
		s.autoAddParticipants(ctx, group, expense)
	}

	slog.Info("Expense updated", "expense_id", expense.ID, "group_id", expense.GroupID)
	return expense, nil
}

// DeleteExpense removes an expense. Derived balances need no invalidation:
// they are recomputed from scratch on every read.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return err
	}
	slog.Info("Expense deleted", "expense_id", expenseID)
	return nil
}

// autoAddParticipants adds the payer and split users missing from the group.
func (s *ExpenseService) autoAddParticipants(ctx context.Context, group *models.Group, expense *models.Expense) {
	var missing []models.Member
	add := func(userID string) {
		if group.HasMember(userID) {
			return
		}
		for _, m := range missing {
			if m.UserID == userID {
				return
			}
		}
		missing = append(missing, models.Member{UserID: userID, DisplayName: userID})
	}

	add(expense.PayerID)
	for _, split := range expense.Splits {
		add(split.UserID)
	}
	if len(missing) == 0 {
		return
	}

	if err := s.store.AddGroupMembers(ctx, group.ID, missing); err != nil {
		slog.Warn("autoAddParticipants failed", "group_id", group.ID, "error", err)
		return
	}
	slog.Info("Auto-added participants to group", "group_id", group.ID, "count", len(missing))
}
