package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/coinfolio/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicker(t *testing.T) {
	assert.Equal(t, "BTC-USD.CC", Ticker(" btc "))
}

func TestDailyCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/ETH-USD.CC", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "2025-01-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2025-01-03", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date":"2024-12-31","open":1,"close":3300.5},
			{"date":"2025-01-01","open":1,"close":3332.1},
			{"date":"2025-01-03","open":1,"close":3601.25}
		]`))
	}))
	defer srv.Close()

	c := New("key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	from, to := date.New(2025, time.January, 1), date.New(2025, time.January, 3)
	closes, err := c.DailyCloses(context.Background(), "eth", from, to)
	require.NoError(t, err)

	assert.Equal(t, 2, closes.Len(), "out of range closes are dropped")
	v, ok := closes.Get(to)
	assert.True(t, ok)
	assert.InDelta(t, 3601.25, v, 1e-9)
	_, ok = closes.Get(from.Add(1))
	assert.False(t, ok)
}

func TestDailyCloses_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := New("key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	d := date.New(2025, time.January, 1)
	_, err := c.DailyCloses(context.Background(), "BTC", d, d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
}

func TestDailyCloses_CancelledContext(t *testing.T) {
	c := New("key", WithBaseURL("http://127.0.0.1:1"), WithRateLimit(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := date.New(2025, time.January, 1)
	_, err := c.DailyCloses(ctx, "BTC", d, d)
	assert.Error(t, err)
}

func TestDiskCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"n":1}`))
	}))
	defer srv.Close()

	today := date.New(2025, time.February, 1)
	cache := &diskCache{base: http.DefaultTransport, dir: t.TempDir(), log: New("").log, today: func() date.Date { return today }}
	client := &http.Client{Transport: cache}
	ctx := context.Background()

	var got struct{ N int }
	require.NoError(t, jwget(ctx, client, srv.URL+"/x", &got))
	require.NoError(t, jwget(ctx, client, srv.URL+"/x", &got))
	assert.Equal(t, 1, got.N)
	assert.EqualValues(t, 1, calls.Load(), "second request served from disk")

	today = today.Add(1)
	require.NoError(t, jwget(ctx, client, srv.URL+"/x", &got))
	assert.EqualValues(t, 2, calls.Load(), "cache expires the next day")

	assert.Error(t, jwget(ctx, client, srv.URL+"/missing", &got))
	assert.Error(t, jwget(ctx, client, srv.URL+"/missing", &got))
	assert.EqualValues(t, 4, calls.Load(), "errors are not cached")
}
