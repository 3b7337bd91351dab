package fx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTableRate(t *testing.T) {
	table := Table{}
	table.Set("USD", "EUR", decimal.RequireFromString("0.92"))

	t.Run("known pair", func(t *testing.T) {
		rate, err := table.Rate("USD", "EUR")
		if err != nil {
			t.Fatalf("Rate failed: %v", err)
		}
		if !rate.Equal(decimal.RequireFromString("0.92")) {
			t.Errorf("rate = %s, want 0.92", rate)
		}
	})

	t.Run("same currency is identity", func(t *testing.T) {
		rate, err := table.Rate("JPY", "JPY")
		if err != nil {
			t.Fatalf("Rate failed: %v", err)
		}
		if !rate.Equal(decimal.NewFromInt(1)) {
			t.Errorf("rate = %s, want 1", rate)
		}
	})

	t.Run("missing pair is an error, not 1:1", func(t *testing.T) {
		_, err := table.Rate("EUR", "USD")
		if !errors.Is(err, ErrMissingRate) {
			t.Errorf("expected ErrMissingRate, got %v", err)
		}
	})

	t.Run("codes are case insensitive", func(t *testing.T) {
		rate, err := table.Rate("usd", "eur")
		if err != nil {
			t.Fatalf("Rate failed: %v", err)
		}
		if !rate.Equal(decimal.RequireFromString("0.92")) {
			t.Errorf("rate = %s, want 0.92", rate)
		}
	})
}

func TestConvert(t *testing.T) {
	table := Table{}
	table.Set("USD", "EUR", decimal.RequireFromString("0.5"))

	got, err := table.Convert(decimal.RequireFromString("10.00"), "USD", "EUR")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("converted = %s, want 5.00", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rates.yaml")

	content := `rates:
  USD:
    EUR: 0.92
    GBP: 0.79
  EUR:
    USD: 1.087
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write rates file: %v", err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	rate, err := table.Rate("USD", "GBP")
	if err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	if !rate.Equal(decimal.NewFromFloat(0.79)) {
		t.Errorf("USD->GBP = %s, want 0.79", rate)
	}

	if _, err := table.Rate("GBP", "USD"); !errors.Is(err, ErrMissingRate) {
		t.Errorf("expected ErrMissingRate for unlisted reverse pair, got %v", err)
	}
}

func TestLoadFileRejectsNonPositiveRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rates.yaml")

	content := `rates:
  USD:
    EUR: -1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write rates file: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for negative rate")
	}
}
