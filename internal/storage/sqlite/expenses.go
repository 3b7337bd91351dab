package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, description, amount, currency, base_amount, base_currency, payer_id, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description,
		expense.Amount.String(), expense.Currency,
		expense.BaseAmount.String(), expense.BaseCurrency,
		expense.PayerID, expense.CreatedAt, expense.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense.ID, expense.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense with its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		`SELECT id, group_id, description, amount, currency, base_amount, base_currency, payer_id, created_at, created_by
		 FROM expenses WHERE id = ?`,
		expenseID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := loadSplits(ctx, s.db, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses for a group, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	return listExpensesByGroup(ctx, s.db, groupID)
}

func listExpensesByGroup(ctx context.Context, q querier, groupID string) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, group_id, description, amount, currency, base_amount, base_currency, payer_id, created_at, created_by
		 FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		if err := loadSplits(ctx, q, &expenses[i]); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// UpdateExpense replaces the expense row and its splits. The stored
// base-currency equivalent is carried over as-is; it is never recomputed
// after creation.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses
		 SET description = ?, amount = ?, currency = ?, base_amount = ?, base_currency = ?, payer_id = ?
		 WHERE id = ?`,
		expense.Description, expense.Amount.String(), expense.Currency,
		expense.BaseAmount.String(), expense.BaseCurrency,
		expense.PayerID, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear splits: %w", err)
	}
	if err := insertSplits(ctx, tx, expense.ID, expense.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense; its splits cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

func insertSplits(ctx context.Context, e execer, expenseID string, splits []models.Split) error {
	for _, split := range splits {
		_, err := e.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount, percent) VALUES (?, ?, ?, ?)",
			expenseID, split.UserID, split.Amount.String(), split.Percent.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert split for %s: %w", split.UserID, err)
		}
	}
	return nil
}

func loadSplits(ctx context.Context, q querier, expense *models.Expense) error {
	rows, err := q.QueryContext(ctx,
		"SELECT user_id, amount, percent FROM expense_splits WHERE expense_id = ? ORDER BY user_id",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.Split
		var amount, percent string
		if err := rows.Scan(&split.UserID, &amount, &percent); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		if split.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("corrupt split amount %q: %w", amount, err)
		}
		if split.Percent, err = decimal.NewFromString(percent); err != nil {
			return fmt.Errorf("corrupt split percent %q: %w", percent, err)
		}
		expense.Splits = append(expense.Splits, split)
	}
	return rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount, baseAmount string
	err := row.Scan(
		&expense.ID, &expense.GroupID, &expense.Description,
		&amount, &expense.Currency,
		&baseAmount, &expense.BaseCurrency,
		&expense.PayerID, &expense.CreatedAt, &expense.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	if expense.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("corrupt expense amount %q: %w", amount, err)
	}
	if expense.BaseAmount, err = decimal.NewFromString(baseAmount); err != nil {
		return nil, fmt.Errorf("corrupt base amount %q: %w", baseAmount, err)
	}
	return expense, nil
}
