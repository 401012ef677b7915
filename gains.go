package coinfolio

import (
	"cmp"
	"slices"
	"time"
)

// RealizedGain is the profit or loss locked in by one sell trade.
type RealizedGain struct {
	TradeID   int64
	Timestamp time.Time
	Sold      string
	Quantity  float64
	CostBasis float64
	Received  string
	Proceeds  float64
	PnL       float64
}

// ComputeRealizedPnL sums the realized profit and loss of all sell trades, in USD.
func ComputeRealizedPnL(entries []LedgerEntry, trades []Trade) float64 {
	var total float64
	for _, g := range RealizedGains(entries, trades) {
		total += g.PnL
	}
	return total
}

// RealizedGains returns one RealizedGain per computable sell trade, in chronological order.
//
// The cost basis of a sell is the quantity sold at its own price snapshot; the
// proceeds are the quantity received at its price, or 1 when the received leg
// has none (a USD pegged asset is assumed). Sells missing a leg or the sold
// price are skipped.
func RealizedGains(entries []LedgerEntry, trades []Trade) []RealizedGain {
	gains, _ := realizedGains(entries, trades)
	return gains
}

func realizedGains(entries []LedgerEntry, trades []Trade) ([]RealizedGain, []Anomaly) {
	legs := make(map[int64][]LedgerEntry)
	for _, e := range entries {
		legs[e.TradeID] = append(legs[e.TradeID], e)
	}

	var gains []RealizedGain
	var anomalies []Anomaly
	for _, t := range trades {
		if t.Kind != KindSell {
			continue
		}
		sold, received, ok := exchangeLegs(legs[t.ID])
		if !ok {
			anomalies = append(anomalies, Anomaly{Kind: AnomalyMissingLeg, TradeID: t.ID})
			continue
		}
		soldPrice, ok := sold.price()
		if !ok {
			anomalies = append(anomalies, Anomaly{Kind: AnomalyMissingPrice, TradeID: t.ID, EntryID: sold.ID, Symbol: NormalizeSymbol(sold.Symbol)})
			continue
		}
		receivedPrice, ok := received.price()
		if !ok {
			receivedPrice = 1
		}
		g := RealizedGain{
			TradeID:   t.ID,
			Timestamp: t.Timestamp,
			Sold:      NormalizeSymbol(sold.Symbol),
			Quantity:  -sold.Amount,
			CostBasis: -sold.Amount * soldPrice,
			Received:  NormalizeSymbol(received.Symbol),
			Proceeds:  received.Amount * receivedPrice,
		}
		g.PnL = g.Proceeds - g.CostBasis
		gains = append(gains, g)
	}
	slices.SortStableFunc(gains, func(a, b RealizedGain) int {
		return cmp.Or(a.Timestamp.Compare(b.Timestamp), cmp.Compare(a.TradeID, b.TradeID))
	})
	return gains, anomalies
}

// exchangeLegs returns the first outflow and the first inflow of a trade, by entry ID.
func exchangeLegs(entries []LedgerEntry) (out, in LedgerEntry, ok bool) {
	var hasOut, hasIn bool
	for _, e := range entries {
		switch {
		case !finite(e.Amount):
		case e.Amount < 0 && (!hasOut || e.ID < out.ID):
			out, hasOut = e, true
		case e.Amount > 0 && (!hasIn || e.ID < in.ID):
			in, hasIn = e, true
		}
	}
	return out, in, hasOut && hasIn
}
