package coinfolio

import (
	"context"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/etnz/coinfolio/date"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultCacheTTL is how long fetched closes are reused before being fetched again.
const DefaultCacheTTL = 15 * time.Minute

// HistorySource provides historical daily closes in USD.
type HistorySource interface {
	// DailyCloses returns the closes of symbol from 'from' to 'to', boundaries included.
	DailyCloses(ctx context.Context, symbol string, from, to date.Date) (*date.History[float64], error)
}

// PriceCache memoizes historical closes per (symbol, range) for a limited time.
//
// It is safe for concurrent use. A reader never waits for another reader's
// fetch: two concurrent misses on the same key both fetch, the last one stored wins.
type PriceCache struct {
	src HistorySource
	ttl time.Duration
	log logrus.FieldLogger
	now func() time.Time

	mu    sync.Mutex
	items map[cacheKey]cacheItem
}

type cacheKey struct {
	symbol string
	rng    date.Range
}

type cacheItem struct {
	closes  *date.History[float64]
	expires time.Time
}

// NewPriceCache returns a cache in front of src. A nil logger discards logs.
func NewPriceCache(src HistorySource, ttl time.Duration, log logrus.FieldLogger) *PriceCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = discardLogger()
	}
	return &PriceCache{
		src:   src,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
		items: make(map[cacheKey]cacheItem),
	}
}

// Closes returns the closes of symbol over rng, fetching them when they are
// not cached or expired. A failed fetch is logged and returns nil so that
// price resolution falls through to the next rule.
func (c *PriceCache) Closes(ctx context.Context, symbol string, rng date.Range) *date.History[float64] {
	key := cacheKey{NormalizeSymbol(symbol), rng}

	c.mu.Lock()
	item, ok := c.items[key]
	c.mu.Unlock()
	if ok && c.now().Before(item.expires) {
		return item.closes
	}

	closes, err := c.src.DailyCloses(ctx, key.symbol, rng.From, rng.To)
	if err != nil {
		c.log.WithError(err).WithField("symbol", key.symbol).WithField("range", rng.String()).Warn("historical closes unavailable")
		return nil
	}
	closes = positive(closes)

	c.mu.Lock()
	c.items[key] = cacheItem{closes: closes, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return closes
}

// Load fetches the closes of several symbols over the same range. Symbols
// without data are absent from the result.
func (c *PriceCache) Load(ctx context.Context, symbols []string, rng date.Range) map[string]*date.History[float64] {
	results := make([]*date.History[float64], len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, sym := range symbols {
		g.Go(func() error {
			results[i] = c.Closes(gctx, sym, rng)
			return nil
		})
	}
	_ = g.Wait() // Closes never fails

	closes := make(map[string]*date.History[float64], len(symbols))
	for i, sym := range symbols {
		if results[i].Len() > 0 {
			closes[NormalizeSymbol(sym)] = results[i]
		}
	}
	return closes
}

// Purge drops expired items.
func (c *PriceCache) Purge() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, item := range c.items {
		if !now.Before(item.expires) {
			delete(c.items, k)
		}
	}
}

// Len returns the number of cached items, expired ones included.
func (c *PriceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// positive returns a copy of h without non positive closes.
func positive(h *date.History[float64]) *date.History[float64] {
	out := new(date.History[float64])
	for d, v := range h.Values() {
		if finite(v) && v > 0 {
			out.Append(d, v)
		}
	}
	return out
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
