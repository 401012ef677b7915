package coinfolio

import (
	"runtime"
	"slices"

	"github.com/etnz/coinfolio/date"
	"golang.org/x/sync/errgroup"
)

// Point is the total value of the portfolio at the end of a day.
type Point struct {
	Date  date.Date
	Value float64
}

// ComputeHistory returns the portfolio value of each day of the trailing
// window ending on the resolver's today, oldest first. A window of n days
// yields n+1 points.
//
// Every day is a full replay of the entries whose trade happened on or before
// that day, valued with the resolver. Assets without any price count for zero.
func ComputeHistory(entries []LedgerEntry, trades []Trade, excluded map[int64]bool, window int, prices *Resolver) []Point {
	rng := date.Window(prices.Today(), window)
	idx := indexTrades(trades)

	// Sorting by trade day once lets each day take a prefix of the ledger.
	dated := make([]datedEntry, 0, len(entries))
	for _, e := range entries {
		if excluded[e.TradeID] {
			continue
		}
		day := date.Date{}
		if t, ok := idx[e.TradeID]; ok {
			day = date.Of(t.Timestamp)
		}
		dated = append(dated, datedEntry{day, e})
	}
	slices.SortStableFunc(dated, func(a, b datedEntry) int { return a.day.Compare(b.day) })

	points := make([]Point, rng.Len())
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	next := 0
	for day := range rng.Days() {
		i, n := next, prefix(dated, day)
		g.Go(func() error {
			points[i] = Point{Date: day, Value: valueOn(dated[:n], trades, excluded, day, prices)}
			return nil
		})
		next++
	}
	_ = g.Wait()
	return points
}

type datedEntry struct {
	day   date.Date
	entry LedgerEntry
}

// prefix returns how many dated entries happened on or before day.
func prefix(dated []datedEntry, day date.Date) int {
	n, _ := slices.BinarySearchFunc(dated, day.Add(1), func(d datedEntry, t date.Date) int { return d.day.Compare(t) })
	return n
}

func valueOn(dated []datedEntry, trades []Trade, excluded map[int64]bool, day date.Date, prices *Resolver) float64 {
	entries := make([]LedgerEntry, len(dated))
	for i, d := range dated {
		entries[i] = d.entry
	}
	var total float64
	for _, h := range ComputeHoldings(entries, trades, excluded) {
		total += h.Amount * prices.Price(h.Symbol, day)
	}
	return total
}
