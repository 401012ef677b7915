package coinfolio

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/etnz/coinfolio/date"
	"github.com/sirupsen/logrus"
)

// DefaultWindow is the default number of trailing days of the value history.
const DefaultWindow = 30

// Inputs is everything a recompute needs, already fetched by the caller.
type Inputs struct {
	Entries   []LedgerEntry
	Trades    []Trade
	Live      map[string]float64
	Overrides map[string]float64
	Window    int
}

// Snapshot is the read-only result of one recompute. It is replaced
// wholesale, never patched.
type Snapshot struct {
	Generation  uint64
	ComputedAt  time.Time
	Today       date.Date
	Holdings    []Holding
	Prices      map[string]float64
	Sources     map[string]PriceSource
	Values      map[string]float64
	TotalValue  float64
	RealizedPnL float64
	Gains       []RealizedGain
	History     []Point
	Anomalies   []Anomaly
}

// Compute runs the whole engine over the inputs and the given closes. It is
// a pure function of its arguments.
func Compute(today date.Date, in Inputs, closes map[string]*date.History[float64], stable []string) Snapshot {
	excluded := TransferIDs(in.Trades)
	prices := NewResolver(today, PriceInputs{
		Overrides: normalizeKeys(in.Overrides),
		Live:      normalizeKeys(in.Live),
		Closes:    closes,
	}, in.Entries, in.Trades)
	if stable != nil {
		prices.WithStable(stable)
	}

	report := ComputeHoldingsReport(in.Entries, in.Trades, excluded)
	gains, gainAnomalies := realizedGains(in.Entries, in.Trades)

	s := Snapshot{
		Today:     today,
		Holdings:  report.Holdings,
		Prices:    make(map[string]float64, len(report.Holdings)),
		Sources:   make(map[string]PriceSource, len(report.Holdings)),
		Values:    make(map[string]float64, len(report.Holdings)),
		Gains:     gains,
		History:   ComputeHistory(in.Entries, in.Trades, excluded, in.Window, prices),
		Anomalies: append(report.Anomalies, gainAnomalies...),
	}
	for _, h := range report.Holdings {
		p, src := prices.Resolve(h.Symbol, today)
		s.Prices[h.Symbol], s.Sources[h.Symbol] = p, src
		s.Values[h.Symbol] = h.Amount * p
		s.TotalValue += h.Amount * p
	}
	for _, g := range gains {
		s.RealizedPnL += g.PnL
	}
	return s
}

// Tracker recomputes snapshots and keeps the one computed from the newest input.
//
// Callers take a generation with Next when their input changes, then call
// Recompute. A result whose generation is older than the published one is
// discarded: stale in-flight computations never overwrite newer ones.
type Tracker struct {
	cache  *PriceCache
	stable []string
	log    logrus.FieldLogger
	today  func() date.Date
	now    func() time.Time

	gen atomic.Uint64

	mu     sync.Mutex
	latest Snapshot
	subs   []chan Snapshot
}

// NewTracker returns a Tracker. A nil cache means no historical closes, a
// nil stable list means DefaultStableSymbols.
func NewTracker(cache *PriceCache, stable []string, log logrus.FieldLogger) *Tracker {
	if log == nil {
		log = discardLogger()
	}
	if stable != nil {
		normalized := make([]string, len(stable))
		for i, s := range stable {
			normalized[i] = NormalizeSymbol(s)
		}
		stable = normalized
	}
	return &Tracker{
		cache:  cache,
		stable: stable,
		log:    log,
		today:  date.Today,
		now:    time.Now,
	}
}

// Next returns a new generation number, greater than every previous one.
func (t *Tracker) Next() uint64 { return t.gen.Add(1) }

// Recompute computes a snapshot for generation gen and publishes it. It
// returns false when the result was discarded, because a newer generation is
// already published or the context was cancelled.
func (t *Tracker) Recompute(ctx context.Context, gen uint64, in Inputs) (Snapshot, bool) {
	today := t.today()
	var closes map[string]*date.History[float64]
	if t.cache != nil {
		closes = t.cache.Load(ctx, QuotedSymbols(in.Entries, t.stable), closesRange(today, in))
	}
	if ctx.Err() != nil {
		t.log.WithField("generation", gen).Debug("recompute cancelled")
		return Snapshot{}, false
	}

	s := Compute(today, in, closes, t.stable)
	s.Generation = gen
	s.ComputedAt = t.now()
	if !t.publish(s) {
		t.log.WithField("generation", gen).Debug("stale snapshot discarded")
		return s, false
	}
	for _, a := range s.Anomalies {
		t.log.WithField("generation", gen).Debugf("ledger anomaly: %v", a)
	}
	return s, true
}

func (t *Tracker) publish(s Snapshot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.Generation <= t.latest.Generation {
		return false
	}
	t.latest = s
	for _, ch := range t.subs {
		select {
		case <-ch: // drop the unread one, only the latest matters
		default:
		}
		ch <- s
	}
	return true
}

// Latest returns the last published snapshot.
func (t *Tracker) Latest() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

// Subscribe returns a channel receiving every published snapshot. Slow
// readers only see the latest one.
func (t *Tracker) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	t.mu.Lock()
	t.subs = append(t.subs, ch)
	t.mu.Unlock()
	return ch
}

// QuotedSymbols returns the sorted distinct symbols of entries that need a
// market price, stable symbols excluded. A nil stable list means
// DefaultStableSymbols.
func QuotedSymbols(entries []LedgerEntry, stable []string) []string {
	if stable == nil {
		stable = DefaultStableSymbols
	}
	skip := make(map[string]bool, len(stable))
	for _, s := range stable {
		skip[NormalizeSymbol(s)] = true
	}
	var symbols []string
	for _, e := range entries {
		sym := NormalizeSymbol(e.Symbol)
		if sym == "" || skip[sym] || slices.Contains(symbols, sym) {
			continue
		}
		symbols = append(symbols, sym)
	}
	slices.Sort(symbols)
	return symbols
}

// closesRange is the window extended back to the first trade day, so that
// any day of the window can be forward-filled from the last known close.
func closesRange(today date.Date, in Inputs) date.Range {
	rng := date.Window(today, in.Window)
	for _, tr := range in.Trades {
		if d := date.Of(tr.Timestamp); d.Before(rng.From) {
			rng.From = d
		}
	}
	return rng
}

func normalizeKeys(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[NormalizeSymbol(k)] = v
	}
	return out
}
