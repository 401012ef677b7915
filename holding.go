package coinfolio

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Dust is the magnitude below which a quantity is considered exactly zero.
const Dust = 1e-8

// Holding is the derived state of one asset.
type Holding struct {
	Symbol string
	Amount float64
	// AvgBuyPrice is the weighted-average cost of one costed unit. Units
	// received as gains carry no cost and are not counted, so after gains
	// Amount*AvgBuyPrice exceeds TotalCostBasis.
	AvgBuyPrice    float64
	TotalCostBasis float64
	// LastBuyPrice is the last non zero price paid for the asset, gains excluded.
	LastBuyPrice float64
}

// HoldingsReport is the result of a holdings replay with the anomalies met on the way.
type HoldingsReport struct {
	Holdings  []Holding
	Anomalies []Anomaly
}

// TransferIDs returns the set of transfer trade IDs. Transfers move an asset
// between accounts and must be excluded from holdings math.
func TransferIDs(trades []Trade) map[int64]bool {
	ids := make(map[int64]bool)
	for _, t := range trades {
		if t.Kind == KindTransfer {
			ids[t.ID] = true
		}
	}
	return ids
}

// ComputeHoldings replays entries per asset and returns the positive holdings
// sorted by symbol. Entries of excluded trades are ignored.
func ComputeHoldings(entries []LedgerEntry, trades []Trade, excluded map[int64]bool) []Holding {
	return ComputeHoldingsReport(entries, trades, excluded).Holdings
}

// ComputeHoldingsReport is ComputeHoldings that also reports anomalies.
func ComputeHoldingsReport(entries []LedgerEntry, trades []Trade, excluded map[int64]bool) HoldingsReport {
	idx := indexTrades(trades)
	var report HoldingsReport

	groups := make(map[string][]replayed)
	for _, e := range entries {
		if excluded[e.TradeID] {
			continue
		}
		t, ok := idx[e.TradeID]
		if !ok {
			report.Anomalies = append(report.Anomalies, Anomaly{Kind: AnomalyOrphanEntry, TradeID: e.TradeID, EntryID: e.ID, Symbol: e.Symbol})
			continue
		}
		if !finite(e.Amount) || e.Amount == 0 {
			report.Anomalies = append(report.Anomalies, Anomaly{Kind: AnomalyInvalidEntry, TradeID: e.TradeID, EntryID: e.ID, Symbol: e.Symbol, Detail: fmt.Sprintf("amount %v", e.Amount)})
			continue
		}
		sym := NormalizeSymbol(e.Symbol)
		groups[sym] = append(groups[sym], replayed{entry: e, trade: t})
	}

	for sym, group := range groups {
		slices.SortFunc(group, compareReplayed)
		f := fold{symbol: sym}
		for _, r := range group {
			f.apply(r, &report.Anomalies)
		}
		if h, ok := f.holding(); ok {
			report.Holdings = append(report.Holdings, h)
		}
	}

	slices.SortFunc(report.Holdings, func(a, b Holding) int { return cmp.Compare(a.Symbol, b.Symbol) })
	slices.SortStableFunc(report.Anomalies, func(a, b Anomaly) int {
		return cmp.Or(cmp.Compare(a.TradeID, b.TradeID), cmp.Compare(a.EntryID, b.EntryID))
	})
	return report
}

// replayed is an entry joined to its parent trade.
type replayed struct {
	entry LedgerEntry
	trade Trade
}

// compareReplayed orders by trade timestamp, entry ID breaks ties.
func compareReplayed(a, b replayed) int {
	if c := a.trade.Timestamp.Compare(b.trade.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.entry.ID, b.entry.ID)
}

// fold is the running state of one asset replay.
//
// costed is the part of quantity that carries cost basis: gains add to
// quantity only, so the average buy price is cost/costed and stays put when
// free units arrive. Outflows deplete cost and costed in proportion.
type fold struct {
	symbol   string
	quantity float64
	costed   float64
	cost     float64
	lastBuy  float64
}

func (f *fold) apply(r replayed, anomalies *[]Anomaly) {
	e := r.entry
	if e.Amount > 0 {
		f.quantity += e.Amount
		if r.trade.Kind == KindGain {
			// Free inventory: it must not dilute the average cost.
			return
		}
		price, _ := e.price()
		f.costed += e.Amount
		f.cost += e.Amount * price
		if price > 0 {
			f.lastBuy = price
		}
		return
	}

	out := -e.Amount
	if out > f.quantity+Dust {
		*anomalies = append(*anomalies, Anomaly{
			Kind:    AnomalyOversell,
			TradeID: e.TradeID,
			EntryID: e.ID,
			Symbol:  f.symbol,
			Detail:  fmt.Sprintf("removes %v but only %v held", out, math.Max(f.quantity, 0)),
		})
		f.quantity, f.costed, f.cost = 0, 0, 0
		return
	}
	avg := 0.0
	if f.cost > 0 && f.quantity > 0 {
		avg = f.cost / f.quantity
	}
	share := 0.0
	if f.quantity > 0 {
		share = f.costed / f.quantity
	}
	f.cost -= out * avg
	f.costed -= out * share
	f.quantity -= out
	f.snap()
}

// snap removes floating point residue.
func (f *fold) snap() {
	if math.Abs(f.quantity) < Dust {
		f.quantity, f.costed, f.cost = 0, 0, 0
	}
	if f.costed < Dust {
		f.costed, f.cost = 0, 0
	}
	if f.cost < 0 {
		f.cost = 0
	}
}

func (f *fold) holding() (Holding, bool) {
	f.snap()
	if f.quantity <= 0 {
		return Holding{}, false
	}
	avg := 0.0
	if f.costed > 0 {
		avg = f.cost / f.costed
	}
	return Holding{
		Symbol:         f.symbol,
		Amount:         f.quantity,
		AvgBuyPrice:    avg,
		TotalCostBasis: f.cost,
		LastBuyPrice:   f.lastBuy,
	}, true
}

func indexTrades(trades []Trade) map[int64]Trade {
	idx := make(map[int64]Trade, len(trades))
	for _, t := range trades {
		idx[t.ID] = t
	}
	return idx
}
