package coinfolio

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/coinfolio/date"
)

func newTestTracker(src HistorySource) *Tracker {
	var cache *PriceCache
	if src != nil {
		cache = NewPriceCache(src, time.Minute, nil)
	}
	tr := NewTracker(cache, nil, nil)
	tr.today = func() date.Date { return date.New(2025, time.March, 10) }
	tr.now = func() time.Time { return time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC) }
	return tr
}

func TestTracker_Recompute(t *testing.T) {
	entries, trades := ledger(t,
		must(NewDeposit(at(0), 1, "BTC", 2, USD(100))),
		must(NewDeposit(at(0), 1, "USDC", 50, nil)),
		must(NewSell(at(1), 1, "BTC/USDC", 150, leg("BTC", 1, 100), leg("USDC", 150, 1))),
	)
	src := &fakeSource{closes: map[string]*date.History[float64]{
		"BTC": closes(map[date.Date]float64{date.New(2025, time.March, 9): 120}),
	}}
	tr := newTestTracker(src)

	s, ok := tr.Recompute(context.Background(), tr.Next(), Inputs{
		Entries: entries, Trades: trades, Window: DefaultWindow,
		Overrides: map[string]float64{"btc": 130},
	})
	if !ok {
		t.Fatalf("Recompute() was discarded")
	}
	if s.Generation != 1 {
		t.Errorf("Generation = %d, want 1", s.Generation)
	}
	if s.Prices["BTC"] != 130 || s.Sources["BTC"] != SourceOverride {
		t.Errorf("BTC price = %v (%v), want 130 (override)", s.Prices["BTC"], s.Sources["BTC"])
	}
	if !near(s.TotalValue, 130+200) {
		t.Errorf("TotalValue = %v, want 330", s.TotalValue)
	}
	if !near(s.RealizedPnL, 50) {
		t.Errorf("RealizedPnL = %v, want 50", s.RealizedPnL)
	}
	if len(s.History) != DefaultWindow+1 {
		t.Errorf("len(History) = %d, want %d", len(s.History), DefaultWindow+1)
	}
	if n := src.count("USDC"); n != 0 {
		t.Errorf("stable asset closes fetched %d times, want 0", n)
	}
	if got := tr.Latest(); got.Generation != 1 {
		t.Errorf("Latest().Generation = %d, want 1", got.Generation)
	}
}

func TestTracker_ForwardFillsOldCloses(t *testing.T) {
	// The last close is a week before the history window, the asset is no
	// longer quoted since.
	entries, trades := ledger(t,
		must(NewDeposit(at(0), 1, "LUNA", 10, USD(5))),
	)
	src := &fakeSource{closes: map[string]*date.History[float64]{
		"LUNA": closes(map[date.Date]float64{date.New(2025, time.March, 1): 2}),
	}}
	tr := newTestTracker(src)

	s, ok := tr.Recompute(context.Background(), tr.Next(), Inputs{Entries: entries, Trades: trades, Window: 1})
	if !ok {
		t.Fatalf("Recompute() was discarded")
	}
	if s.Prices["LUNA"] != 2 || s.Sources["LUNA"] == SourceLedger {
		t.Errorf("LUNA price = %v (%v), want the last close 2", s.Prices["LUNA"], s.Sources["LUNA"])
	}
	if !near(s.TotalValue, 20) {
		t.Errorf("TotalValue = %v, want 20", s.TotalValue)
	}
}

func TestQuotedSymbols(t *testing.T) {
	entries := []LedgerEntry{{Symbol: "eth"}, {Symbol: "BTC"}, {Symbol: "USDT"}, {Symbol: "ETH"}, {Symbol: "dai"}}
	if d := diff([]string{"BTC", "DAI", "ETH"}, QuotedSymbols(entries, []string{"usdt"})); d != "" {
		t.Errorf("QuotedSymbols() mismatch (-want +got):\n%s", d)
	}
	if d := diff([]string{"BTC", "ETH"}, QuotedSymbols(entries, nil)); d != "" {
		t.Errorf("QuotedSymbols() with default stable symbols mismatch (-want +got):\n%s", d)
	}
}

func TestTracker_DiscardsStaleGeneration(t *testing.T) {
	tr := newTestTracker(nil)
	ctx := context.Background()
	old, fresh := tr.Next(), tr.Next()

	if _, ok := tr.Recompute(ctx, fresh, Inputs{Window: 1}); !ok {
		t.Fatalf("Recompute(%d) was discarded", fresh)
	}
	if _, ok := tr.Recompute(ctx, old, Inputs{Window: 1}); ok {
		t.Errorf("Recompute(%d) was published after %d", old, fresh)
	}
	if got := tr.Latest().Generation; got != fresh {
		t.Errorf("Latest().Generation = %d, want %d", got, fresh)
	}
}

func TestTracker_CancelledContext(t *testing.T) {
	tr := newTestTracker(&fakeSource{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := tr.Recompute(ctx, tr.Next(), Inputs{Window: 1}); ok {
		t.Errorf("Recompute() published with a cancelled context")
	}
}

func TestTracker_SubscribeCoalesces(t *testing.T) {
	tr := newTestTracker(nil)
	ch := tr.Subscribe()
	ctx := context.Background()
	for range 3 {
		tr.Recompute(ctx, tr.Next(), Inputs{Window: 1})
	}

	select {
	case s := <-ch:
		if s.Generation != 3 {
			t.Errorf("received generation %d, want 3", s.Generation)
		}
	default:
		t.Fatalf("no snapshot received")
	}
	select {
	case s := <-ch:
		t.Errorf("received extra snapshot %d", s.Generation)
	default:
	}
}
