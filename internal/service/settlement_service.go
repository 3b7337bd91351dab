package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tabsplit/tabsplit/internal/calculator"
	"github.com/tabsplit/tabsplit/internal/metrics"
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

// SettlementService records payments between members. Recording a completed
// settlement is the only mutation in the system that needs concurrency
// control: marking the same logical debt paid twice must not create two
// records.
type SettlementService struct {
	store storage.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// groupLock returns the serialization point for one group's settlement
// writes.
func (s *SettlementService) groupLock(groupID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[groupID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[groupID] = lock
	}
	return lock
}

// RecordPayment marks one payment plan entry as paid, producing a completed
// settlement.
//
// The guard predicate runs against a fresh snapshot of persisted history
// under the group's write lock, and the store enforces the same predicate
// again inside the insert transaction. A duplicate attempt is idempotent
// success: recorded reports whether this call created the record (true) or
// an equivalent one already existed (false). Either way the payment the
// caller wanted recorded is recorded, so retries are safe.
func (s *SettlementService) RecordPayment(ctx context.Context, groupID string, payment models.Payment, note, actor string) (settlement *models.Settlement, recorded bool, err error) {
	candidate := &models.Settlement{
		GroupID:    groupID,
		FromUserID: payment.FromUserID,
		ToUserID:   payment.ToUserID,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		Status:     models.SettlementCompleted,
		CreatedBy:  actor,
		Note:       note,
	}
	if err := candidate.Validate(); err != nil {
		return nil, false, err
	}

	lock := s.groupLock(groupID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.store.Snapshot(ctx, groupID)
	if err != nil {
		return nil, false, err
	}

	if calculator.AlreadyRecorded(payment, snap.Settlements) {
		metrics.DuplicateSettlementsBlocked.Inc()
		slog.Info("Duplicate settlement attempt ignored",
			"group_id", groupID,
			"from", payment.FromUserID,
			"to", payment.ToUserID,
			"amount", payment.Amount.String(),
			"currency", payment.Currency,
		)
		return nil, false, nil
	}

	if err := s.store.AppendCompletedSettlement(ctx, candidate); err != nil {
		if errors.Is(err, storage.ErrDuplicateSettlement) {
			// Lost the race to an equivalent write; same benign outcome.
			metrics.DuplicateSettlementsBlocked.Inc()
			return nil, false, nil
		}
		slog.Error("RecordPayment failed", "group_id", groupID, "error", err)
		return nil, false, err
	}

	metrics.SettlementsRecorded.Inc()
	slog.Info("Settlement recorded",
		"settlement_id", candidate.ID,
		"group_id", groupID,
		"from", candidate.FromUserID,
		"to", candidate.ToUserID,
		"amount", candidate.Amount.String(),
		"currency", candidate.Currency,
	)
	return candidate, true, nil
}

// SuggestSettlement persists a plan entry as a pending settlement. Pending
// settlements never affect balances; they only carry a suggestion until
// someone acts on it.
func (s *SettlementService) SuggestSettlement(ctx context.Context, groupID string, payment models.Payment, note, actor string) (*models.Settlement, error) {
	settlement := &models.Settlement{
		GroupID:    groupID,
		FromUserID: payment.FromUserID,
		ToUserID:   payment.ToUserID,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		Status:     models.SettlementPending,
		CreatedBy:  actor,
		Note:       note,
	}
	if err := settlement.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("SuggestSettlement failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return settlement, nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SettlementService) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	return s.store.GetSettlement(ctx, settlementID)
}

// ListSettlements retrieves all settlements for a group.
func (s *SettlementService) ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error) {
	return s.store.ListSettlementsByGroup(ctx, groupID)
}

// DeleteSettlement removes a settlement. For completed settlements this is
// the correction path; there is no edit.
func (s *SettlementService) DeleteSettlement(ctx context.Context, settlementID string) error {
	if err := s.store.DeleteSettlement(ctx, settlementID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", settlementID, "error", err)
		return err
	}
	slog.Info("Settlement deleted", "settlement_id", settlementID)
	return nil
}
