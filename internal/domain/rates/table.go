package rates

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Table is an immutable key to amount lookup built from rate card entries.
// Absent keys resolve to zero so an unconfigured code never blocks pricing.
type Table struct {
	amounts      map[string]decimal.Decimal
	descriptions map[string]string
}

func NewTable(entries []Entry) Table {
	t := Table{
		amounts:      make(map[string]decimal.Decimal, len(entries)),
		descriptions: make(map[string]string, len(entries)),
	}
	for _, entry := range entries {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			continue
		}
		t.amounts[key] = entry.Amount
		t.descriptions[key] = entry.Description
	}
	return t
}

// FromMap is a convenience for building a table from plain float amounts.
func FromMap(values map[string]float64) Table {
	entries := make([]Entry, 0, len(values))
	for key, amount := range values {
		entries = append(entries, Entry{Key: key, Amount: decimal.NewFromFloat(amount)})
	}
	return NewTable(entries)
}

func (t Table) Lookup(key string) (decimal.Decimal, bool) {
	amount, ok := t.amounts[strings.TrimSpace(key)]
	return amount, ok
}

func (t Table) Rate(key string) decimal.Decimal {
	amount, _ := t.Lookup(key)
	return amount
}

// RateOr returns def only when key is absent, a configured zero stays zero.
func (t Table) RateOr(key string, def decimal.Decimal) decimal.Decimal {
	if amount, ok := t.Lookup(key); ok {
		return amount
	}
	return def
}

// Resolve looks up primary first and falls back to the legacy code.
func (t Table) Resolve(primary, fallback string) decimal.Decimal {
	if amount, ok := t.Lookup(primary); ok {
		return amount
	}
	return t.Rate(fallback)
}

func (t Table) Description(key string) string {
	return t.descriptions[strings.TrimSpace(key)]
}

func (t Table) Len() int {
	return len(t.amounts)
}
