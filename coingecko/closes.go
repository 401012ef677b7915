package coingecko

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/etnz/coinfolio/date"
	"github.com/shopspring/decimal"
)

// DailyCloses returns the USD closes of symbol between from and to included.
// The close of a day is the last price sample of that UTC day.
func (c *Client) DailyCloses(ctx context.Context, symbol string, from, to date.Date) (*date.History[float64], error) {
	id, err := c.ID(symbol)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("from", fmt.Sprint(from.Unix()))
	params.Set("to", fmt.Sprint(to.Add(1).Unix()-1))

	// {"prices":[[1711843200000,69702.3087473573],[1711929600000,71246.9514406015]], "market_caps": ..., "total_volumes": ...}
	var content struct {
		Prices [][2]decimal.Decimal `json:"prices"`
	}
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart/range?"+params.Encode(), &content); err != nil {
		return nil, fmt.Errorf("coingecko closes of %s: %w", symbol, err)
	}

	slices.SortStableFunc(content.Prices, func(a, b [2]decimal.Decimal) int { return a[0].Cmp(b[0]) })
	closes := new(date.History[float64])
	for _, sample := range content.Prices {
		day := date.Of(time.UnixMilli(sample[0].IntPart()).UTC())
		if day.Before(from) || day.After(to) {
			continue
		}
		closes.Append(day, sample[1].InexactFloat64())
	}
	c.log.WithField("symbol", symbol).Debugf("coingecko returned %d closes", closes.Len())
	return closes, nil
}

// LivePrices returns the current USD price of the symbols CoinGecko knows.
// Unknown symbols are absent from the result.
func (c *Client) LivePrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	bySymbol := make(map[string]string)
	var ids []string
	for _, sym := range symbols {
		id, err := c.ID(sym)
		if err != nil {
			c.log.WithField("symbol", sym).Debug("no coingecko id, skipped")
			continue
		}
		bySymbol[id] = strings.ToUpper(strings.TrimSpace(sym))
		ids = append(ids, id)
	}
	prices := make(map[string]float64)
	if len(ids) == 0 {
		return prices, nil
	}
	slices.SortFunc(ids, cmp.Compare)
	ids = slices.Compact(ids)

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")

	// {"bitcoin":{"usd":67187.33}, "ethereum":{"usd":3455.12}}
	content := make(map[string]struct {
		USD decimal.Decimal `json:"usd"`
	})
	if err := c.get(ctx, "/simple/price?"+params.Encode(), &content); err != nil {
		return nil, fmt.Errorf("coingecko live prices: %w", err)
	}
	for id, quote := range content {
		sym, ok := bySymbol[id]
		if !ok || !quote.USD.IsPositive() {
			continue
		}
		prices[sym] = quote.USD.InexactFloat64()
	}
	return prices, nil
}

// LiveSource polls live prices of a fixed list of symbols.
type LiveSource struct {
	Client  *Client
	Symbols []string
}

// Prices returns the latest prices.
func (s LiveSource) Prices(ctx context.Context) (map[string]float64, error) {
	return s.Client.LivePrices(ctx, s.Symbols)
}
