package coinfolio

import (
	"slices"

	"github.com/etnz/coinfolio/date"
)

// DefaultStableSymbols are assets pegged 1:1 to USD.
var DefaultStableSymbols = []string{"USD", "USDT", "USDC", "DAI", "BUSD", "TUSD", "USDP", "FDUSD", "PYUSD"}

// PriceInputs is the already fetched price data a Resolver works on.
type PriceInputs struct {
	// Overrides are user set prices, they win regardless of the date.
	Overrides map[string]float64
	// Live are the latest prices from the live feed, only used for today.
	Live map[string]float64
	// Closes are the historical daily closes per symbol.
	Closes map[string]*date.History[float64]
}

// PriceSource tells which rule produced a resolved price.
type PriceSource string

const (
	SourceOverride    PriceSource = "override"
	SourceStable      PriceSource = "stable"
	SourceLive        PriceSource = "live"
	SourceClose       PriceSource = "close"
	SourceForwardFill PriceSource = "forward-fill"
	SourceLedger      PriceSource = "ledger"
	SourceNone        PriceSource = "none"
)

// Resolver resolves a best effort USD price for a symbol on a day.
//
// It is read-only once built and safe for concurrent use.
type Resolver struct {
	today  date.Date
	inputs PriceInputs
	ledger map[string]*date.History[float64]
	stable map[string]bool
}

// NewResolver returns a Resolver for 'today' using the given inputs. The
// ledger provides the last resort prices: positive entry price snapshots,
// dated by their trade.
func NewResolver(today date.Date, inputs PriceInputs, entries []LedgerEntry, trades []Trade) *Resolver {
	r := &Resolver{
		today:  today,
		inputs: inputs,
		ledger: ledgerPrices(entries, trades),
	}
	return r.WithStable(DefaultStableSymbols)
}

// WithStable replaces the set of symbols resolved to exactly 1.
func (r *Resolver) WithStable(symbols []string) *Resolver {
	r.stable = make(map[string]bool, len(symbols))
	for _, s := range symbols {
		r.stable[NormalizeSymbol(s)] = true
	}
	return r
}

// Today returns the day live prices apply to.
func (r *Resolver) Today() date.Date { return r.today }

// IsStable reports whether symbol is pegged to USD.
func (r *Resolver) IsStable(symbol string) bool { return r.stable[NormalizeSymbol(symbol)] }

// Price returns the price of one unit of symbol on day 'on', zero when nothing is known.
func (r *Resolver) Price(symbol string, on date.Date) float64 {
	p, _ := r.Resolve(symbol, on)
	return p
}

// Resolve returns the price and the rule that produced it. First match wins:
// override, stable, live (today only), close on that day, latest close
// before, latest ledger price on or before, zero.
func (r *Resolver) Resolve(symbol string, on date.Date) (float64, PriceSource) {
	sym := NormalizeSymbol(symbol)
	if p, ok := r.inputs.Overrides[sym]; ok && finite(p) && p >= 0 {
		return p, SourceOverride
	}
	if r.stable[sym] {
		return 1, SourceStable
	}
	if on == r.today {
		if p, ok := r.inputs.Live[sym]; ok && finite(p) && p > 0 {
			return p, SourceLive
		}
	}
	closes := r.inputs.Closes[sym]
	if p, ok := closes.Get(on); ok && p > 0 {
		return p, SourceClose
	}
	if p, ok := closes.ValueAsOf(on); ok && p > 0 {
		return p, SourceForwardFill
	}
	if p, ok := r.ledger[sym].ValueAsOf(on); ok {
		return p, SourceLedger
	}
	return 0, SourceNone
}

// ledgerPrices builds, per symbol, the series of positive price snapshots by
// trade day. The latest entry of a day wins.
func ledgerPrices(entries []LedgerEntry, trades []Trade) map[string]*date.History[float64] {
	idx := indexTrades(trades)
	var priced []replayed
	for _, e := range entries {
		t, ok := idx[e.TradeID]
		if !ok {
			continue
		}
		if p, ok := e.price(); !ok || p <= 0 {
			continue
		}
		priced = append(priced, replayed{entry: e, trade: t})
	}
	slices.SortFunc(priced, compareReplayed)

	prices := make(map[string]*date.History[float64])
	for _, r := range priced {
		sym := NormalizeSymbol(r.entry.Symbol)
		h, ok := prices[sym]
		if !ok {
			h = new(date.History[float64])
			prices[sym] = h
		}
		h.Append(date.Of(r.trade.Timestamp), *r.entry.Price)
	}
	return prices
}
