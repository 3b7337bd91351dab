package calculator

import (
	"testing"

	"github.com/tabsplit/tabsplit/internal/models"
)

func TestAlreadyRecorded(t *testing.T) {
	history := []models.Settlement{
		completed("bob", "alice", "USD", "30.00"),
		{
			FromUserID: "carol", ToUserID: "alice",
			Currency: "USD", Amount: dec("30.00"),
			Status: models.SettlementPending,
		},
		completed("dave", "alice", "EUR", "12.50"),
	}

	tests := []struct {
		name     string
		proposed models.Payment
		want     bool
	}{
		{
			name:     "exact match",
			proposed: models.Payment{FromUserID: "bob", ToUserID: "alice", Amount: dec("30.00"), Currency: "USD"},
			want:     true,
		},
		{
			name:     "amount within epsilon",
			proposed: models.Payment{FromUserID: "bob", ToUserID: "alice", Amount: dec("30.01"), Currency: "USD"},
			want:     true,
		},
		{
			name:     "amount beyond epsilon",
			proposed: models.Payment{FromUserID: "bob", ToUserID: "alice", Amount: dec("30.02"), Currency: "USD"},
			want:     false,
		},
		{
			name:     "pending settlements do not block",
			proposed: models.Payment{FromUserID: "carol", ToUserID: "alice", Amount: dec("30.00"), Currency: "USD"},
			want:     false,
		},
		{
			name:     "different currency",
			proposed: models.Payment{FromUserID: "bob", ToUserID: "alice", Amount: dec("30.00"), Currency: "EUR"},
			want:     false,
		},
		{
			name:     "currency match is case insensitive",
			proposed: models.Payment{FromUserID: "dave", ToUserID: "alice", Amount: dec("12.50"), Currency: "eur"},
			want:     true,
		},
		{
			name:     "reversed parties do not match",
			proposed: models.Payment{FromUserID: "alice", ToUserID: "bob", Amount: dec("30.00"), Currency: "USD"},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlreadyRecorded(tt.proposed, history); got != tt.want {
				t.Errorf("AlreadyRecorded(%+v) = %v, want %v", tt.proposed, got, tt.want)
			}
		})
	}

	t.Run("no history", func(t *testing.T) {
		p := models.Payment{FromUserID: "bob", ToUserID: "alice", Amount: dec("30.00"), Currency: "USD"}
		if AlreadyRecorded(p, nil) {
			t.Error("expected false with empty history")
		}
	})
}

// Recording a payment, recomputing, and re-proposing the same tuple must be
// caught by the guard even though the plan identity has changed.
func TestGuardAcrossRecalculation(t *testing.T) {
	ms := members("alice", "bob", "carol")
	expenses := []models.Expense{
		expense("alice", "USD", "90.00", map[string]string{
			"alice": "30.00", "bob": "30.00", "carol": "30.00",
		}),
	}

	var history []models.Settlement

	balances := ComputeBalances(ms, expenses, history)
	plan, err := Simplify(balances["USD"], "USD")
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("plan length = %d, want 2", len(plan))
	}
	first := plan[0]

	// User acts on the first entry; it becomes a completed settlement.
	history = append(history, models.Settlement{
		GroupID:    "g1",
		FromUserID: first.FromUserID,
		ToUserID:   first.ToUserID,
		Amount:     first.Amount,
		Currency:   first.Currency,
		Status:     models.SettlementCompleted,
	})

	// Recompute: the recorded entry must be gone from the new plan.
	balances = ComputeBalances(ms, expenses, history)
	newPlan, err := Simplify(balances["USD"], "USD")
	if err != nil {
		t.Fatalf("Simplify failed after settlement: %v", err)
	}
	for _, p := range newPlan {
		if p.FromUserID == first.FromUserID && p.ToUserID == first.ToUserID {
			t.Errorf("settled entry still suggested: %+v", p)
		}
	}

	// A stale retry of the same tuple must be flagged.
	if !AlreadyRecorded(first, history) {
		t.Error("guard failed to flag an already recorded payment")
	}
}
