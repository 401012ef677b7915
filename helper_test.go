package coinfolio

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/etnz/coinfolio/date"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// t0 is the day all test trades are relative to.
var t0 = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

// at returns a trade time n days after t0.
func at(n int) time.Time { return t0.AddDate(0, 0, n) }

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// leg is a helper for test to create a priced exchange leg.
func leg(symbol string, qty, price float64) Leg { return Leg{symbol, qty, USD(price)} }

// ledger records the drafts in a fresh book and returns its content.
func ledger(t *testing.T, drafts ...Draft) ([]LedgerEntry, []Trade) {
	t.Helper()
	ctx := context.Background()
	b := NewBook()
	for _, d := range drafts {
		if _, err := b.Record(ctx, d); err != nil {
			t.Fatalf("Record(%v) error = %v", d.Trade.Kind, err)
		}
	}
	entries, _ := b.ListLedgerEntries(ctx)
	trades, _ := b.ListTrades(ctx)
	return entries, trades
}

// approx compares floats up to accumulated rounding.
var approx = cmpopts.EquateApprox(0, 1e-9)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// days compares dates by value, their fields are unexported.
var days = cmpopts.EquateComparable(date.Date{})

func diff(want, got any) string { return cmp.Diff(want, got, approx, days) }
