// Package coingecko reads daily closes and live USD prices from the CoinGecko API.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	RequestTimeout = 30 * time.Second
	// RateLimit is the pace of the public API: a few calls per minute.
	RateLimit  = 6 * time.Second
	MaxRetries = 3
)

// ErrUnknownSymbol is returned when no CoinGecko id is known for a symbol.
var ErrUnknownSymbol = errors.New("unknown coingecko symbol")

// DefaultIDs maps common symbols to CoinGecko coin ids.
var DefaultIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"LTC":   "litecoin",
	"TRX":   "tron",
	"ATOM":  "cosmos",
	"XLM":   "stellar",
	"NEAR":  "near",
	"ARB":   "arbitrum",
	"OP":    "optimism",
	"UNI":   "uniswap",
	"PEPE":  "pepe",
	"SHIB":  "shiba-inu",
	"MATIC": "matic-network",
}

// Client is a CoinGecko API client. It implements coinfolio.HistorySource.
type Client struct {
	baseURL string
	apiKey  string
	ids     map[string]string
	client  *http.Client
	limiter *rate.Limiter
	backoff time.Duration
	log     logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithAPIKey sets the demo API key sent in the x-cg-demo-api-key header.
func WithAPIKey(key string) Option { return func(c *Client) { c.apiKey = key } }

// WithIDs adds or replaces symbol to coin id mappings.
func WithIDs(ids map[string]string) Option {
	return func(c *Client) {
		for sym, id := range ids {
			c.ids[strings.ToUpper(sym)] = id
		}
	}
}

// WithHTTPClient replaces the default http client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.client = h } }

// WithRateLimit sets the minimum interval between two calls, and the wait after a 429.
func WithRateLimit(every time.Duration) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(every), 1)
		c.backoff = every
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option { return func(c *Client) { c.log = log } }

// New returns a client for the public API.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		ids:     maps.Clone(DefaultIDs),
		client:  &http.Client{Timeout: RequestTimeout},
		limiter: rate.NewLimiter(rate.Every(RateLimit), 1),
		backoff: 10 * RateLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	return c
}

// ID returns the coin id of symbol.
func (c *Client) ID(symbol string) (string, error) {
	id, ok := c.ids[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	return id, nil
}

// get performs a rate limited GET, retrying when rate limited by the server.
func (c *Client) get(ctx context.Context, path string, data any) error {
	addr := c.baseURL + path
	var lastErr error
	for attempt := range MaxRetries {
		if attempt > 0 {
			c.log.Warnf("retry attempt %d/%d for %s", attempt, MaxRetries-1, path)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-cg-demo-api-key", c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited")
			c.log.Warnf("rate limited on %s, waiting %v before retry", path, c.backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
			continue
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		if err := json.Unmarshal(body, data); err != nil {
			return fmt.Errorf("failed to unmarshal: %w", err)
		}
		return nil
	}
	return fmt.Errorf("max retries exceeded for %s: %w", path, lastErr)
}
