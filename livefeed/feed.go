// Package livefeed keeps the latest live prices of assets and the manual
// price overrides, and feeds them from a websocket stream or by polling.
package livefeed

import (
	"io"
	"maps"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Feed is the thread-safe store of live prices and overrides.
type Feed struct {
	log logrus.FieldLogger
	now func() time.Time

	mu        sync.RWMutex
	prices    map[string]float64
	updated   map[string]time.Time
	overrides map[string]float64
	subs      []chan struct{}
}

// New returns an empty Feed. A nil logger discards logs.
func New(log logrus.FieldLogger) *Feed {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Feed{
		log:       log,
		now:       time.Now,
		prices:    make(map[string]float64),
		updated:   make(map[string]time.Time),
		overrides: make(map[string]float64),
	}
}

func normalize(symbol string) string { return strings.ToUpper(strings.TrimSpace(symbol)) }

func usable(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 }

// Price returns the live price of symbol.
func (f *Feed) Price(symbol string) (float64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.prices[normalize(symbol)]
	return p, ok
}

// Updated returns when the live price of symbol was last set.
func (f *Feed) Updated(symbol string) (time.Time, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.updated[normalize(symbol)]
	return t, ok
}

// Override returns the manual price of symbol.
func (f *Feed) Override(symbol string) (float64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.overrides[normalize(symbol)]
	return p, ok
}

// Prices returns a copy of all live prices.
func (f *Feed) Prices() map[string]float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return maps.Clone(f.prices)
}

// Overrides returns a copy of all manual prices.
func (f *Feed) Overrides() map[string]float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return maps.Clone(f.overrides)
}

// SetPrices records live prices. Non positive prices are ignored.
// Subscribers are notified when at least one price changed.
func (f *Feed) SetPrices(prices map[string]float64) {
	now := f.now()
	changed := false
	f.mu.Lock()
	for sym, p := range prices {
		if !usable(p) {
			f.log.WithField("symbol", sym).Debugf("ignored live price %v", p)
			continue
		}
		sym = normalize(sym)
		if old, ok := f.prices[sym]; !ok || old != p {
			changed = true
		}
		f.prices[sym], f.updated[sym] = p, now
	}
	f.mu.Unlock()
	if changed {
		f.notify()
	}
}

// SetPrice records the live price of one symbol.
func (f *Feed) SetPrice(symbol string, price float64) {
	f.SetPrices(map[string]float64{symbol: price})
}

// SetOverrides replaces all manual prices.
func (f *Feed) SetOverrides(overrides map[string]float64) {
	f.mu.Lock()
	f.overrides = make(map[string]float64, len(overrides))
	for sym, p := range overrides {
		f.overrides[normalize(sym)] = p
	}
	f.mu.Unlock()
	f.notify()
}

// Subscribe returns a channel that receives a tick whenever prices change.
// Ticks coalesce: a slow reader gets one tick for many changes.
func (f *Feed) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	f.subs = append(f.subs, ch)
	f.mu.Unlock()
	return ch
}

func (f *Feed) notify() {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
