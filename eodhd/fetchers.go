package eodhd

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/etnz/coinfolio/date"
	"github.com/shopspring/decimal"
)

// Ticker returns the eodhd ticker of a crypto asset quoted in USD.
func Ticker(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + "-USD.CC"
}

// DailyCloses returns the daily USD closes of symbol between from and to included.
func (c *Client) DailyCloses(ctx context.Context, symbol string, from, to date.Date) (*date.History[float64], error) {
	// https://eodhd.com/api/eod/BTC-USD.CC?api_token=demo&fmt=json&from=2024-02-01&to=2024-02-13
	// [
	//	{
	//		"date": "2024-02-13",
	//		"open": 49941.36,
	//		"high": 50358.39,
	//		"low": 48406.5,
	//		"close": 49742.44,
	//		"adjusted_close": 49742.44,
	//		"volume": 35593051468
	//	},
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")
	params.Set("from", from.String())
	params.Set("to", to.String())
	addr := fmt.Sprintf("%s/eod/%s?%s", c.baseURL, url.PathEscape(Ticker(symbol)), params.Encode())

	type Info struct {
		Date  date.Date       `json:"date"`
		Close decimal.Decimal `json:"close"`
	}
	content := make([]Info, 0)
	if err := jwget(ctx, c.client, addr, &content); err != nil {
		return nil, fmt.Errorf("eodhd closes of %s: %w", symbol, err)
	}

	closes := new(date.History[float64])
	for _, info := range content {
		if info.Date.Before(from) || info.Date.After(to) {
			continue
		}
		closes.Append(info.Date, info.Close.InexactFloat64())
	}
	c.log.WithField("symbol", symbol).Debugf("eodhd returned %d closes", closes.Len())
	return closes, nil
}
