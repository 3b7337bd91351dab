package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/models"
)

func splitSum(splits []models.Split) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
	}
	return sum
}

func TestEqualSplits(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		users   []string
		wantErr bool
		want    map[string]string
	}{
		{
			name:   "even division",
			amount: "90.00",
			users:  []string{"carol", "alice", "bob"},
			want:   map[string]string{"alice": "30.00", "bob": "30.00", "carol": "30.00"},
		},
		{
			name:   "leftover cents go to first users by id",
			amount: "10.00",
			users:  []string{"carol", "bob", "alice"},
			want:   map[string]string{"alice": "3.34", "bob": "3.33", "carol": "3.33"},
		},
		{
			name:   "single participant takes everything",
			amount: "42.37",
			users:  []string{"alice"},
			want:   map[string]string{"alice": "42.37"},
		},
		{
			name:    "no participants",
			amount:  "10.00",
			users:   nil,
			wantErr: true,
		},
		{
			name:    "non-positive amount",
			amount:  "0",
			users:   []string{"alice"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := EqualSplits(dec(tt.amount), tt.users)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EqualSplits() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if !splitSum(splits).Equal(dec(tt.amount)) {
				t.Errorf("splits sum to %s, want %s", splitSum(splits), tt.amount)
			}
			for _, s := range splits {
				want, ok := tt.want[s.UserID]
				if !ok {
					t.Errorf("unexpected split user %s", s.UserID)
					continue
				}
				if !s.Amount.Equal(dec(want)) {
					t.Errorf("%s share = %s, want %s", s.UserID, s.Amount, want)
				}
			}
		})
	}
}

func TestPercentSplits(t *testing.T) {
	t.Run("exact percentages", func(t *testing.T) {
		splits, err := PercentSplits(dec("200.00"), []PercentShare{
			{UserID: "alice", Percent: dec("50")},
			{UserID: "bob", Percent: dec("30")},
			{UserID: "carol", Percent: dec("20")},
		})
		if err != nil {
			t.Fatalf("PercentSplits failed: %v", err)
		}
		want := map[string]string{"alice": "100.00", "bob": "60.00", "carol": "40.00"}
		for _, s := range splits {
			if !s.Amount.Equal(dec(want[s.UserID])) {
				t.Errorf("%s share = %s, want %s", s.UserID, s.Amount, want[s.UserID])
			}
		}
	})

	t.Run("last share absorbs rounding remainder", func(t *testing.T) {
		splits, err := PercentSplits(dec("100.00"), []PercentShare{
			{UserID: "alice", Percent: dec("33.33")},
			{UserID: "bob", Percent: dec("33.33")},
			{UserID: "carol", Percent: dec("33.34")},
		})
		if err != nil {
			t.Fatalf("PercentSplits failed: %v", err)
		}
		if !splitSum(splits).Equal(dec("100.00")) {
			t.Errorf("splits sum to %s, want 100.00", splitSum(splits))
		}
	})

	t.Run("shares not summing to 100", func(t *testing.T) {
		_, err := PercentSplits(dec("100.00"), []PercentShare{
			{UserID: "alice", Percent: dec("60")},
			{UserID: "bob", Percent: dec("60")},
		})
		if err == nil {
			t.Error("expected error for shares summing to 120")
		}
	})

	t.Run("negative share", func(t *testing.T) {
		_, err := PercentSplits(dec("100.00"), []PercentShare{
			{UserID: "alice", Percent: dec("110")},
			{UserID: "bob", Percent: dec("-10")},
		})
		if err == nil {
			t.Error("expected error for negative share")
		}
	})
}
