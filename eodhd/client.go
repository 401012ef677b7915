// Package eodhd fetches historical daily closes of crypto assets from eodhd.com.
package eodhd

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://eodhd.com/api"
	// DefaultRateLimit is the number of requests per second, the free plan is tight.
	DefaultRateLimit = 5
)

// Client is an eodhd API client. It implements coinfolio.HistorySource.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithHTTPClient replaces the default daily disk cached client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.client = h } }

// WithRateLimit sets the maximum number of requests per second.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond) }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option { return func(c *Client) { c.log = log } }

// New returns a client using apiKey. By default responses are cached on disk
// for the day.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	if c.client == nil {
		c.client = newDailyCachingClient(filepath.Join(os.TempDir(), "coinfolio-eodhd"), c.log)
	}
	return c
}
