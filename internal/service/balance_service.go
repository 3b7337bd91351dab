package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/calculator"
	"github.com/tabsplit/tabsplit/internal/fx"
	"github.com/tabsplit/tabsplit/internal/metrics"
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

// BalanceService derives balances and payment plans from a group snapshot.
// It holds no state of its own; every call reads fresh records and recomputes
// from scratch, which is what makes mutations elsewhere safe.
type BalanceService struct {
	store storage.Store
	rates fx.Source
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(store storage.Store, rates fx.Source) *BalanceService {
	return &BalanceService{store: store, rates: rates}
}

// GroupBalances is the per-currency view: the currency-faithful truth.
type GroupBalances struct {
	GroupID string

	// Balances per currency, every member listed, zero rows included.
	Balances map[string][]models.Balance

	// Plans per currency, one independent simplification run each.
	Plans map[string][]models.Payment
}

// ReconciledView is the optional cross-currency view, derived on demand and
// never a substitute for the per-currency balances.
type ReconciledView struct {
	GroupID  string
	Currency string
	Balances []models.Balance
	Plan     []models.Payment
}

// Balances computes per-currency balances and payment plans for a group.
func (s *BalanceService) Balances(ctx context.Context, groupID string) (*GroupBalances, error) {
	snap, err := s.store.Snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	byCurrency := calculator.ComputeBalances(snap.Group.Members, snap.Expenses, snap.Settlements)

	result := &GroupBalances{
		GroupID:  groupID,
		Balances: make(map[string][]models.Balance, len(byCurrency)),
		Plans:    make(map[string][]models.Payment, len(byCurrency)),
	}

	for currency, users := range byCurrency {
		result.Balances[currency] = seeded(snap.Group.Members, currency, users)

		plan, err := calculator.Simplify(users, currency)
		if err != nil {
			metrics.InvariantViolations.Inc()
			slog.Error("Balance invariant violated",
				"group_id", groupID, "currency", currency, "error", err)
			return nil, err
		}
		result.Plans[currency] = plan
	}

	metrics.PlansComputed.WithLabelValues("per_currency").Inc()
	return result, nil
}

// Reconciled computes the unified cross-currency view in the target
// currency. Requires a rate for every currency present in the ledger;
// a missing rate rejects the request and leaves the per-currency view
// untouched as the fallback.
func (s *BalanceService) Reconciled(ctx context.Context, groupID, targetCurrency string) (*ReconciledView, error) {
	targetCurrency = strings.ToUpper(targetCurrency)
	snap, err := s.store.Snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	byCurrency := calculator.ComputeBalances(snap.Group.Members, snap.Expenses, snap.Settlements)

	unified, err := calculator.Reconcile(byCurrency, targetCurrency, s.rates.Rates())
	if err != nil {
		slog.Warn("Reconciliation rejected",
			"group_id", groupID, "target", targetCurrency, "error", err)
		return nil, err
	}

	plan, err := calculator.Simplify(unified, targetCurrency)
	if err != nil {
		metrics.InvariantViolations.Inc()
		return nil, err
	}

	metrics.PlansComputed.WithLabelValues("reconciled").Inc()
	return &ReconciledView{
		GroupID:  groupID,
		Currency: targetCurrency,
		Balances: seeded(snap.Group.Members, targetCurrency, unified),
		Plan:     plan,
	}, nil
}

// seeded turns a balance map into a sorted slice with a zero row for every
// member that has no balance in this currency, so presentation always shows
// the full membership.
func seeded(members []models.Member, currency string, amounts map[string]decimal.Decimal) []models.Balance {
	balances := make([]models.Balance, 0, len(members))
	listed := make(map[string]bool, len(members))

	for _, m := range members {
		amount := amounts[m.UserID]
		balances = append(balances, models.Balance{
			UserID:   m.UserID,
			Currency: currency,
			Amount:   amount,
		})
		listed[m.UserID] = true
	}
	// Participants that were never added as members still show up.
	for userID, amount := range amounts {
		if !listed[userID] {
			balances = append(balances, models.Balance{
				UserID:   userID,
				Currency: currency,
				Amount:   amount,
			})
		}
	}

	sort.Slice(balances, func(i, j int) bool {
		return balances[i].UserID < balances[j].UserID
	})
	return balances
}
