// Package metrics exposes Prometheus counters for the settlement path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlansComputed counts payment plan computations, labeled by kind
	// ("per_currency" or "reconciled").
	PlansComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabsplit_plans_computed_total",
		Help: "Number of payment plans computed.",
	}, []string{"kind"})

	// SettlementsRecorded counts completed settlements appended to the store.
	SettlementsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabsplit_settlements_recorded_total",
		Help: "Number of completed settlements recorded.",
	})

	// DuplicateSettlementsBlocked counts mark-paid attempts rejected by the
	// idempotency guard or the write-time duplicate check.
	DuplicateSettlementsBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabsplit_duplicate_settlements_blocked_total",
		Help: "Number of duplicate settlement attempts treated as no-ops.",
	})

	// InvariantViolations counts ledger computations rejected because
	// balances failed to sum to zero.
	InvariantViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabsplit_ledger_invariant_violations_total",
		Help: "Number of detected ledger conservation violations.",
	})
)
