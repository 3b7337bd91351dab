// Package fx provides the exchange-rate table used for cross-currency
// reconciliation. Rates are configuration input, refreshed externally; this
// package never fetches market data.
package fx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// ErrMissingRate indicates a currency pair absent from the table. There is
// deliberately no 1:1 fallback between different currencies: a silent
// identity rate would corrupt the per-currency conservation invariant.
var ErrMissingRate = errors.New("missing exchange rate")

// Table maps from-currency to to-currency to rate. Codes are upper-case
// 3-letter, e.g. Table["USD"]["EUR"].
type Table map[string]map[string]decimal.Decimal

// Source supplies the current rate table. The table is refreshed outside
// this process; consumers ask the source every time instead of holding on to
// a table.
type Source interface {
	Rates() Table
}

// Static is a Source that always returns the same table. Suitable for
// file-based configuration and for tests.
type Static Table

// Rates implements Source.
func (s Static) Rates() Table { return Table(s) }

// Rate returns the conversion rate from one currency to another.
// Same-currency pairs always resolve to 1.
func (t Table) Rate(from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := t[from][to]; ok {
		return rate, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s->%s", ErrMissingRate, from, to)
}

// Convert converts amount from one currency to another using the table.
func (t Table) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := t.Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// Set records a rate, creating the inner map as needed. Mostly useful for
// tests and for building tables programmatically.
func (t Table) Set(from, to string, rate decimal.Decimal) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if t[from] == nil {
		t[from] = make(map[string]decimal.Decimal)
	}
	t[from][to] = rate
}

// LoadFile reads a rate table from a YAML file of the form:
//
//	rates:
//	  USD:
//	    EUR: 0.92
//	  EUR:
//	    USD: 1.087
func LoadFile(path string) (Table, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read rates file: %w", err)
	}

	raw := make(map[string]map[string]float64)
	if err := v.UnmarshalKey("rates", &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rates file: %w", err)
	}

	table := make(Table, len(raw))
	for from, pairs := range raw {
		for to, rate := range pairs {
			if rate <= 0 {
				return nil, fmt.Errorf("rate %s->%s must be positive, got %v", from, to, rate)
			}
			table.Set(from, to, decimal.NewFromFloat(rate))
		}
	}
	return table, nil
}
