package cmd

import (
	"context"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/coingecko"
	"github.com/etnz/coinfolio/eodhd"
	"github.com/etnz/coinfolio/livefeed"
)

// liveWait bounds how long one-shot reports wait for live prices.
const liveWait = 5 * time.Second

// historySource returns the configured source of daily closes, nil for none.
func (e *env) historySource() coinfolio.HistorySource {
	switch e.cfg.Prices.History {
	case "eodhd":
		if e.cfg.EODHD.APIKey == "" {
			e.log.Warn("no EODHD api key configured, historical prices are disabled")
			return nil
		}
		return eodhd.New(e.cfg.EODHD.APIKey,
			eodhd.WithBaseURL(e.cfg.EODHD.BaseURL),
			eodhd.WithRateLimit(e.cfg.EODHD.RateLimit),
			eodhd.WithLogger(e.log))
	case "coingecko":
		return e.coingecko()
	default:
		return nil
	}
}

func (e *env) coingecko() *coingecko.Client {
	opts := []coingecko.Option{
		coingecko.WithBaseURL(e.cfg.CoinGecko.BaseURL),
		coingecko.WithLogger(e.log),
	}
	if e.cfg.CoinGecko.APIKey != "" {
		opts = append(opts, coingecko.WithAPIKey(e.cfg.CoinGecko.APIKey))
	}
	if len(e.cfg.CoinGecko.IDs) > 0 {
		opts = append(opts, coingecko.WithIDs(e.cfg.CoinGecko.IDs))
	}
	return coingecko.New(opts...)
}

// stable returns the configured stable symbols normalized, nil for the defaults.
func (e *env) stable() []string {
	var stable []string
	for _, s := range e.cfg.Prices.Stable {
		if s = coinfolio.NormalizeSymbol(s); s != "" {
			stable = append(stable, s)
		}
	}
	return stable
}

// tracker returns a Tracker reading historical closes through a cache.
func (e *env) tracker() *coinfolio.Tracker {
	var cache *coinfolio.PriceCache
	if src := e.historySource(); src != nil {
		cache = coinfolio.NewPriceCache(src, e.cfg.Prices.GetCacheTTL(), e.log)
	}
	return coinfolio.NewTracker(cache, e.stable(), e.log)
}

// readInputs reads the whole book.
func (e *env) readInputs(ctx context.Context, b book) (coinfolio.Inputs, error) {
	in := coinfolio.Inputs{Window: e.cfg.Prices.Window}
	var err error
	if in.Entries, err = b.ListLedgerEntries(ctx); err != nil {
		return in, err
	}
	if in.Trades, err = b.ListTrades(ctx); err != nil {
		return in, err
	}
	if in.Overrides, err = b.Overrides(ctx); err != nil {
		return in, err
	}
	return in, nil
}

// feedLive starts the configured live source of symbols into feed until ctx
// is done. It returns false when no source was started.
func (e *env) feedLive(ctx context.Context, feed *livefeed.Feed, symbols []string) bool {
	if len(symbols) == 0 {
		return false
	}
	interval := e.cfg.Live.GetPollInterval()
	switch e.cfg.Live.Source {
	case "binance":
		go func() {
			if err := feed.Stream(ctx, e.cfg.Live.URL, symbols); err != nil {
				e.log.WithError(err).Warn("live stream stopped")
			}
		}()
	case "coingecko":
		go feed.Poll(ctx, coingecko.LiveSource{Client: e.coingecko(), Symbols: symbols}, interval)
	case "jsonpath":
		src := livefeed.JSONPathSource{URL: e.cfg.Live.JSONPath.URL, Paths: e.cfg.Live.JSONPath.Paths}
		go feed.Poll(ctx, src, interval)
	default:
		return false
	}
	e.log.WithField("symbols", symbols).Debugf("live prices from %s", e.cfg.Live.Source)
	return true
}

// snapshot computes the current state of b. Live prices are awaited for at
// most liveWait, missing ones fall back to historical closes.
func (e *env) snapshot(ctx context.Context, b book) (coinfolio.Snapshot, error) {
	in, err := e.readInputs(ctx, b)
	if err != nil {
		return coinfolio.Snapshot{}, err
	}

	liveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	feed := livefeed.New(e.log)
	ticks := feed.Subscribe()
	symbols := coinfolio.QuotedSymbols(in.Entries, e.stable())
	if e.feedLive(liveCtx, feed, symbols) {
		timeout := time.After(liveWait)
	wait:
		for len(feed.Prices()) < len(symbols) {
			select {
			case <-ticks:
			case <-timeout:
				e.log.Debug("live prices incomplete, using closes for the rest")
				break wait
			case <-ctx.Done():
				return coinfolio.Snapshot{}, ctx.Err()
			}
		}
	}
	in.Live = feed.Prices()
	cancel()

	tr := e.tracker()
	s, ok := tr.Recompute(ctx, tr.Next(), in)
	if !ok && ctx.Err() != nil {
		return s, ctx.Err()
	}
	return s, nil
}
