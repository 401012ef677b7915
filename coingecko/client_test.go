package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/coinfolio/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithRateLimit(time.Millisecond))
}

func TestDailyCloses(t *testing.T) {
	from, to := date.New(2024, time.March, 30), date.New(2024, time.March, 31)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart/range", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "1711756800", r.URL.Query().Get("from"))
		assert.Equal(t, "1711929599", r.URL.Query().Get("to"))
		// Two samples on March 30th, one on the 31st, out of order.
		w.Write([]byte(`{"prices":[
			[1711843200000, 69702.5],
			[1711756800000, 69000],
			[1711839600000, 69900.25]
		]}`))
	})

	closes, err := c.DailyCloses(context.Background(), "btc", from, to)
	require.NoError(t, err)
	v, ok := closes.Get(from)
	require.True(t, ok)
	assert.InDelta(t, 69900.25, v, 1e-9, "the last sample of the day is the close")
	v, ok = closes.Get(to)
	require.True(t, ok)
	assert.InDelta(t, 69702.5, v, 1e-9)
}

func TestDailyCloses_UnknownSymbol(t *testing.T) {
	c := New()
	d := date.New(2024, time.March, 30)
	_, err := c.DailyCloses(context.Background(), "NOPE", d, d)
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	c = New(WithIDs(map[string]string{"nope": "nope-coin"}))
	id, err := c.ID("NOPE")
	require.NoError(t, err)
	assert.Equal(t, "nope-coin", id)
}

func TestLivePrices(t *testing.T) {
	var (
		mu  sync.Mutex
		ids []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		mu.Lock()
		ids = append(ids, r.URL.Query().Get("ids"))
		mu.Unlock()
		w.Write([]byte(`{"bitcoin":{"usd":67187.33},"ethereum":{"usd":0}}`))
	})

	prices, err := c.LivePrices(context.Background(), []string{"eth", "BTC", "XYZ"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"BTC": 67187.33}, prices)

	src := LiveSource{Client: c, Symbols: []string{"BTC"}}
	prices, err = src.Prices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"BTC": 67187.33}, prices)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"bitcoin,ethereum", "bitcoin"}, ids)
}

func TestRetriesWhenRateLimited(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"bitcoin":{"usd":1}}`))
	})

	prices, err := c.LivePrices(context.Background(), []string{"BTC"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, prices["BTC"])
	assert.EqualValues(t, 2, calls.Load())
}

func TestServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.LivePrices(context.Background(), []string{"BTC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
