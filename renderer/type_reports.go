package renderer

import (
	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/date"
)

// History is the view of the portfolio value series.
type History struct {
	From   date.Date      `json:"from"`
	To     date.Date      `json:"to"`
	Points []HistoryPoint `json:"points"`
	// Change is the value difference between the last and the first point.
	Change Money `json:"change"`
}

// HistoryPoint is the value of the portfolio at the end of Date.
type HistoryPoint struct {
	Date   date.Date `json:"date"`
	Value  Money     `json:"value"`
	Change Money     `json:"change"`
}

// NewHistory creates the History view of a value series, oldest point first.
func NewHistory(points []coinfolio.Point) *History {
	h := &History{Points: make([]HistoryPoint, 0, len(points))}
	for i, p := range points {
		hp := HistoryPoint{Date: p.Date, Value: Money(p.Value)}
		if i > 0 {
			hp.Change = Money(p.Value - points[i-1].Value)
		}
		h.Points = append(h.Points, hp)
	}
	if n := len(points); n > 0 {
		h.From, h.To = points[0].Date, points[n-1].Date
		h.Change = Money(points[n-1].Value - points[0].Value)
	}
	return h
}

// Gains is the view of the realized profit and loss.
type Gains struct {
	Trades []GainTrade `json:"trades"`
	Total  Money       `json:"total"`
}

// GainTrade is the realized profit or loss of one sell.
type GainTrade struct {
	TradeID   int64     `json:"tradeID"`
	Date      date.Date `json:"date"`
	Sold      string    `json:"sold"`
	Quantity  Quantity  `json:"quantity"`
	CostBasis Money     `json:"costBasis"`
	Received  string    `json:"received"`
	Proceeds  Money     `json:"proceeds"`
	PnL       Money     `json:"pnl"`
}

// NewGains creates the Gains view of realized gains.
func NewGains(gains []coinfolio.RealizedGain) *Gains {
	g := &Gains{Trades: make([]GainTrade, 0, len(gains))}
	for _, x := range gains {
		g.Trades = append(g.Trades, GainTrade{
			TradeID:   x.TradeID,
			Date:      date.Of(x.Timestamp),
			Sold:      x.Sold,
			Quantity:  Quantity(x.Quantity),
			CostBasis: Money(x.CostBasis),
			Received:  x.Received,
			Proceeds:  Money(x.Proceeds),
			PnL:       Money(x.PnL),
		})
		g.Total += Money(x.PnL)
	}
	return g
}

// Balances is the view of asset quantities per account.
type Balances struct {
	Accounts []BalanceAccount `json:"accounts"`
}

// BalanceAccount lists the assets held in one account.
type BalanceAccount struct {
	ID     int64          `json:"id"`
	Name   string         `json:"name"`
	Assets []BalanceAsset `json:"assets"`
	Value  Money          `json:"value"`
}

// BalanceAsset is one asset of an account.
type BalanceAsset struct {
	Symbol string   `json:"symbol"`
	Amount Quantity `json:"amount"`
	Value  Money    `json:"value"`
}

// NewBalances groups balances by account, keeping their order. Values use
// prices, assets without a price are worth zero.
func NewBalances(balances []coinfolio.AccountBalance, prices map[string]float64) *Balances {
	b := &Balances{}
	for _, x := range balances {
		n := len(b.Accounts)
		if n == 0 || b.Accounts[n-1].ID != x.AccountID {
			b.Accounts = append(b.Accounts, BalanceAccount{ID: x.AccountID, Name: x.Account})
			n++
		}
		acc := &b.Accounts[n-1]
		v := Money(x.Amount * prices[x.Symbol])
		acc.Assets = append(acc.Assets, BalanceAsset{Symbol: x.Symbol, Amount: Quantity(x.Amount), Value: v})
		acc.Value += v
	}
	return b
}

// Allocation is the view of current weights against targets.
type Allocation struct {
	Rows  []AllocationRow `json:"rows"`
	Total Money           `json:"total"`
}

// AllocationRow is the drift of one asset.
type AllocationRow struct {
	Symbol  string  `json:"symbol"`
	Value   Money   `json:"value"`
	Current Percent `json:"current"`
	Target  Percent `json:"target"`
	Delta   Percent `json:"delta"`
}

// NewAllocation creates the Allocation view of drifts.
func NewAllocation(drifts []coinfolio.Drift) *Allocation {
	a := &Allocation{Rows: make([]AllocationRow, 0, len(drifts))}
	for _, d := range drifts {
		a.Rows = append(a.Rows, AllocationRow{
			Symbol:  d.Symbol,
			Value:   Money(d.Value),
			Current: Percent(d.Current),
			Target:  Percent(d.Target),
			Delta:   Percent(d.Delta),
		})
		a.Total += Money(d.Value)
	}
	return a
}
