package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

// duplicateTolerance mirrors the guard's amount epsilon: a completed
// settlement within a cent of the proposed one counts as the same payment.
var duplicateTolerance = decimal.RequireFromString("0.01")

// CreateSettlement persists a settlement as-is. Used for pending suggestions
// and corrections; marking a plan entry paid goes through
// AppendCompletedSettlement instead.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	fillSettlementDefaults(settlement)
	return insertSettlement(ctx, s.db, settlement)
}

// AppendCompletedSettlement records a completed settlement, enforcing the
// duplicate guard inside the same write transaction as the insert. Two
// concurrent attempts to record the same logical payment cannot both
// succeed: whichever commits second sees the first one's row and fails with
// ErrDuplicateSettlement.
func (s *SQLiteStore) AppendCompletedSettlement(ctx context.Context, settlement *models.Settlement) error {
	settlement.Status = models.SettlementCompleted
	fillSettlementDefaults(settlement)
	if settlement.CompletedAt == 0 {
		settlement.CompletedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT amount FROM settlements
		 WHERE group_id = ? AND from_user_id = ? AND to_user_id = ?
		   AND UPPER(currency) = ? AND status = ?`,
		settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
		strings.ToUpper(settlement.Currency), string(models.SettlementCompleted),
	)
	if err != nil {
		return fmt.Errorf("failed to check for duplicates: %w", err)
	}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan settlement amount: %w", err)
		}
		existing, err := decimal.NewFromString(raw)
		if err != nil {
			rows.Close()
			return fmt.Errorf("corrupt settlement amount %q: %w", raw, err)
		}
		if existing.Sub(settlement.Amount).Abs().LessThanOrEqual(duplicateTolerance) {
			rows.Close()
			return storage.ErrDuplicateSettlement
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to iterate settlements: %w", err)
	}
	rows.Close()

	if err := insertSettlement(ctx, tx, settlement); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.db.QueryRowContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, currency, status, created_at, completed_at, created_by, note
		 FROM settlements WHERE id = ?`,
		settlementID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error) {
	return listSettlementsByGroup(ctx, s.db, groupID)
}

func listSettlementsByGroup(ctx context.Context, q querier, groupID string) ([]models.Settlement, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, currency, status, created_at, completed_at, created_by, note
		 FROM settlements WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, *settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	return nil
}

func fillSettlementDefaults(settlement *models.Settlement) {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
}

func insertSettlement(ctx context.Context, e execer, settlement *models.Settlement) error {
	var note any
	if settlement.Note != "" {
		note = settlement.Note
	}
	var completedAt any
	if settlement.CompletedAt != 0 {
		completedAt = settlement.CompletedAt
	}

	_, err := e.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount, currency, status, created_at, completed_at, created_by, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
		settlement.Amount.String(), strings.ToUpper(settlement.Currency),
		string(settlement.Status), settlement.CreatedAt, completedAt,
		settlement.CreatedBy, note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

func scanSettlement(row scanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var amount, status string
	var completedAt sql.NullInt64
	var note sql.NullString

	err := row.Scan(
		&settlement.ID, &settlement.GroupID,
		&settlement.FromUserID, &settlement.ToUserID,
		&amount, &settlement.Currency, &status,
		&settlement.CreatedAt, &completedAt,
		&settlement.CreatedBy, &note,
	)
	if err != nil {
		return nil, err
	}

	if settlement.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("corrupt settlement amount %q: %w", amount, err)
	}
	settlement.Status = models.SettlementStatus(status)
	if completedAt.Valid {
		settlement.CompletedAt = completedAt.Int64
	}
	if note.Valid {
		settlement.Note = note.String
	}
	return settlement, nil
}
