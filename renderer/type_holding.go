package renderer

import (
	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/date"
)

// Holding is the view of a snapshot's current holdings.
type Holding struct {
	Generation  uint64    `json:"generation"`
	Date        date.Date `json:"date"`
	TotalValue  Money     `json:"totalValue"`
	TotalCost   Money     `json:"totalCost"`
	Unrealized  Money     `json:"unrealized"`
	RealizedPnL Money     `json:"realizedPnL"`
	// Assets are sorted by symbol.
	Assets    []HoldingAsset `json:"assets"`
	Anomalies []string       `json:"anomalies,omitempty"`
	// HideAnomalies skips the anomalies section.
	HideAnomalies bool `json:"-"`
}

// HoldingAsset is one row of the holdings table.
type HoldingAsset struct {
	Symbol       string   `json:"symbol"`
	Amount       Quantity `json:"amount"`
	AvgBuyPrice  Price    `json:"avgBuyPrice"`
	LastBuyPrice Price    `json:"lastBuyPrice"`
	Price        Price    `json:"price"`
	Source       string   `json:"source"`
	Value        Money    `json:"value"`
	CostBasis    Money    `json:"costBasis"`
	Unrealized   Money    `json:"unrealized"`
}

// NewHolding creates the Holding view of a snapshot.
func NewHolding(s coinfolio.Snapshot) *Holding {
	h := &Holding{
		Generation:  s.Generation,
		Date:        s.Today,
		TotalValue:  Money(s.TotalValue),
		RealizedPnL: Money(s.RealizedPnL),
		Assets:      make([]HoldingAsset, 0, len(s.Holdings)),
	}
	for _, x := range s.Holdings {
		value := s.Values[x.Symbol]
		h.Assets = append(h.Assets, HoldingAsset{
			Symbol:       x.Symbol,
			Amount:       Quantity(x.Amount),
			AvgBuyPrice:  Price(x.AvgBuyPrice),
			LastBuyPrice: Price(x.LastBuyPrice),
			Price:        Price(s.Prices[x.Symbol]),
			Source:       string(s.Sources[x.Symbol]),
			Value:        Money(value),
			CostBasis:    Money(x.TotalCostBasis),
			Unrealized:   Money(value - x.TotalCostBasis),
		})
		h.TotalCost += Money(x.TotalCostBasis)
	}
	h.Unrealized = h.TotalValue - h.TotalCost
	for _, a := range s.Anomalies {
		h.Anomalies = append(h.Anomalies, a.String())
	}
	return h
}
