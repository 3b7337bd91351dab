package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/fx"
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage/sqlite"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	groups      *GroupService
	expenses    *ExpenseService
	settlements *SettlementService
	balances    *BalanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	rates := fx.Table{}
	rates.Set("EUR", "USD", dec("2"))
	rates.Set("USD", "EUR", dec("0.5"))
	source := fx.Static(rates)

	return &fixture{
		groups:      NewGroupService(store),
		expenses:    NewExpenseService(store, source),
		settlements: NewSettlementService(store),
		balances:    NewBalanceService(store, source),
	}
}

func (f *fixture) seedGroup(t *testing.T) *models.Group {
	t.Helper()
	group, err := f.groups.CreateGroup(context.Background(), "Trip", "USD", []models.Member{
		{UserID: "alice", DisplayName: "Alice"},
		{UserID: "bob", DisplayName: "Bob"},
		{UserID: "carol", DisplayName: "Carol"},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func (f *fixture) seedExpense(t *testing.T, groupID string) *models.Expense {
	t.Helper()
	expense, err := f.expenses.CreateExpense(context.Background(), &models.Expense{
		GroupID:     groupID,
		Description: "Dinner",
		Amount:      dec("90.00"),
		Currency:    "USD",
		PayerID:     "alice",
		CreatedBy:   "alice",
		Splits: []models.Split{
			{UserID: "alice", Amount: dec("30.00")},
			{UserID: "bob", Amount: dec("30.00")},
			{UserID: "carol", Amount: dec("30.00")},
		},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return expense
}

// The worked scenario: Alice pays 90 USD split three ways, Bob settles up,
// and a stale retry of Bob's payment is a no-op.
func TestRecordPaymentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := f.seedGroup(t)
	f.seedExpense(t, group.ID)

	view, err := f.balances.Balances(ctx, group.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	plan := view.Plans["USD"]
	if len(plan) != 2 {
		t.Fatalf("plan length = %d, want 2: %v", len(plan), plan)
	}
	if plan[0].FromUserID != "bob" || plan[1].FromUserID != "carol" {
		t.Fatalf("unexpected plan order: %v", plan)
	}

	// Bob pays Alice.
	settlement, recorded, err := f.settlements.RecordPayment(ctx, group.ID, plan[0], "venmo", "bob")
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if !recorded || settlement == nil {
		t.Fatal("expected first RecordPayment to create a settlement")
	}

	// Recompute: Bob is settled, only Carol's payment remains.
	view, err = f.balances.Balances(ctx, group.ID)
	if err != nil {
		t.Fatalf("Balances failed after settlement: %v", err)
	}
	newPlan := view.Plans["USD"]
	if len(newPlan) != 1 {
		t.Fatalf("plan length after settlement = %d, want 1: %v", len(newPlan), newPlan)
	}
	if newPlan[0].FromUserID != "carol" || !newPlan[0].Amount.Equal(dec("30")) {
		t.Errorf("remaining entry = %+v, want carol->alice 30", newPlan[0])
	}
	for _, b := range view.Balances["USD"] {
		switch b.UserID {
		case "alice":
			if !b.Amount.Equal(dec("30")) {
				t.Errorf("alice balance = %s, want 30", b.Amount)
			}
		case "bob":
			if !b.Amount.IsZero() {
				t.Errorf("bob balance = %s, want 0", b.Amount)
			}
		case "carol":
			if !b.Amount.Equal(dec("-30")) {
				t.Errorf("carol balance = %s, want -30", b.Amount)
			}
		}
	}

	// A stale retry of Bob's payment must be an idempotent no-op.
	_, recorded, err = f.settlements.RecordPayment(ctx, group.ID, plan[0], "", "bob")
	if err != nil {
		t.Fatalf("retried RecordPayment errored: %v", err)
	}
	if recorded {
		t.Error("retried RecordPayment created a second settlement")
	}

	settlements, err := f.settlements.ListSettlements(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(settlements) != 1 {
		t.Errorf("got %d settlements, want 1", len(settlements))
	}

	// Balances unchanged by the retry.
	again, err := f.balances.Balances(ctx, group.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if len(again.Plans["USD"]) != 1 {
		t.Errorf("retry changed the plan: %v", again.Plans["USD"])
	}
}

// Two concurrent attempts to mark the same debt paid must produce exactly
// one settlement record.
func TestRecordPaymentConcurrentDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := f.seedGroup(t)
	f.seedExpense(t, group.ID)

	payment := models.Payment{
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     dec("30.00"),
		Currency:   "USD",
	}

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, recorded, err := f.settlements.RecordPayment(ctx, group.ID, payment, "", "bob")
			if err != nil {
				t.Errorf("RecordPayment failed: %v", err)
				return
			}
			results[i] = recorded
		}(i)
	}
	wg.Wait()

	created := 0
	for _, r := range results {
		if r {
			created++
		}
	}
	if created != 1 {
		t.Errorf("%d concurrent attempts created %d settlements, want 1", attempts, created)
	}

	settlements, err := f.settlements.ListSettlements(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(settlements) != 1 {
		t.Errorf("got %d settlement records, want 1", len(settlements))
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	f := newFixture(t)
	group := f.seedGroup(t)

	_, _, err := f.settlements.RecordPayment(context.Background(), group.ID, models.Payment{
		FromUserID: "bob",
		ToUserID:   "bob",
		Amount:     dec("10.00"),
		Currency:   "USD",
	}, "", "bob")
	if err == nil {
		t.Error("expected error for self-payment")
	}

	_, _, err = f.settlements.RecordPayment(context.Background(), group.ID, models.Payment{
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     dec("-1"),
		Currency:   "USD",
	}, "", "bob")
	if err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestSuggestSettlementDoesNotAffectBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := f.seedGroup(t)
	f.seedExpense(t, group.ID)

	_, err := f.settlements.SuggestSettlement(ctx, group.ID, models.Payment{
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     dec("30.00"),
		Currency:   "USD",
	}, "suggested", "alice")
	if err != nil {
		t.Fatalf("SuggestSettlement failed: %v", err)
	}

	view, err := f.balances.Balances(ctx, group.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	// Pending suggestion leaves the plan untouched.
	if len(view.Plans["USD"]) != 2 {
		t.Errorf("pending settlement changed the plan: %v", view.Plans["USD"])
	}

	// And a later completed payment of the same tuple still goes through.
	_, recorded, err := f.settlements.RecordPayment(ctx, group.ID, models.Payment{
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     dec("30.00"),
		Currency:   "USD",
	}, "", "bob")
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if !recorded {
		t.Error("pending suggestion blocked the real payment")
	}
}

func TestDeleteSettlementRestoresDebt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := f.seedGroup(t)
	f.seedExpense(t, group.ID)

	settlement, recorded, err := f.settlements.RecordPayment(ctx, group.ID, models.Payment{
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     dec("30.00"),
		Currency:   "USD",
	}, "", "bob")
	if err != nil || !recorded {
		t.Fatalf("RecordPayment failed: recorded=%v err=%v", recorded, err)
	}

	if err := f.settlements.DeleteSettlement(ctx, settlement.ID); err != nil {
		t.Fatalf("DeleteSettlement failed: %v", err)
	}

	view, err := f.balances.Balances(ctx, group.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if len(view.Plans["USD"]) != 2 {
		t.Errorf("after correction, plan = %v, want both debts back", view.Plans["USD"])
	}
}
