// Package config loads the coinfolio configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for cfl.
type Config struct {
	Book      BookConfig      `toml:"book"`
	Prices    PricesConfig    `toml:"prices"`
	EODHD     EODHDConfig     `toml:"eodhd"`
	CoinGecko CoinGeckoConfig `toml:"coingecko"`
	Live      LiveConfig      `toml:"live"`
	Logging   LoggingConfig   `toml:"logging"`
}

// BookConfig tells where trades are stored.
type BookConfig struct {
	Path   string `toml:"path"`
	Driver string `toml:"driver"` // "jsonl" or "sqlite"
}

// PricesConfig holds the price resolution settings.
type PricesConfig struct {
	History  string   `toml:"history"` // "coingecko", "eodhd" or "none"
	Window   int      `toml:"window"`  // days of value history
	CacheTTL string   `toml:"cache_ttl"`
	Stable   []string `toml:"stable"`
}

// GetCacheTTL parses and returns the price cache ttl.
func (c *PricesConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// EODHDConfig holds EODHD API configuration.
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
}

// CoinGeckoConfig holds CoinGecko API configuration.
type CoinGeckoConfig struct {
	BaseURL string            `toml:"base_url"`
	APIKey  string            `toml:"api_key"`
	IDs     map[string]string `toml:"ids"` // symbol to coin id, added to the defaults
}

// LiveConfig holds the live price feed configuration.
type LiveConfig struct {
	Source       string         `toml:"source"` // "binance", "coingecko", "jsonpath" or "none"
	URL          string         `toml:"url"`
	PollInterval string         `toml:"poll_interval"`
	JSONPath     JSONPathConfig `toml:"jsonpath"`
}

// GetPollInterval parses and returns the poll interval.
func (c *LiveConfig) GetPollInterval() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// JSONPathConfig reads live prices out of any JSON document.
type JSONPathConfig struct {
	URL   string            `toml:"url"`
	Paths map[string]string `toml:"paths"` // symbol to JSONPath
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	book := "book.jsonl"
	if home, err := os.UserHomeDir(); err == nil {
		book = filepath.Join(home, ".coinfolio", "book.jsonl")
	}
	return &Config{
		Book: BookConfig{Path: book, Driver: "jsonl"},
		Prices: PricesConfig{
			History:  "coingecko",
			Window:   30,
			CacheTTL: "15m",
		},
		EODHD:     EODHDConfig{BaseURL: "https://eodhd.com/api", RateLimit: 5},
		CoinGecko: CoinGeckoConfig{BaseURL: "https://api.coingecko.com/api/v3"},
		Live: LiveConfig{
			Source:       "binance",
			URL:          "wss://stream.binance.com:9443",
			PollInterval: "1m",
		},
		Logging: LoggingConfig{Level: "warn", Format: "text"},
	}
}

// Load loads configuration: defaults, then a .env file of the working
// directory if any, then each TOML file in order (missing files are
// skipped), then CFL_* environment overrides.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := NewDefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	return config, config.Validate()
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("CFL_BOOK"); v != "" {
		config.Book.Path = v
	}
	if v := os.Getenv("CFL_BOOK_DRIVER"); v != "" {
		config.Book.Driver = v
	}
	if v := os.Getenv("CFL_HISTORY_SOURCE"); v != "" {
		config.Prices.History = v
	}
	if v := os.Getenv("CFL_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Prices.Window = n
		}
	}
	if v := os.Getenv("CFL_STABLE"); v != "" {
		config.Prices.Stable = strings.Split(v, ",")
	}
	if v := os.Getenv("CFL_EODHD_API_KEY"); v != "" {
		config.EODHD.APIKey = v
	}
	if v := os.Getenv("CFL_COINGECKO_API_KEY"); v != "" {
		config.CoinGecko.APIKey = v
	}
	if v := os.Getenv("CFL_LIVE_SOURCE"); v != "" {
		config.Live.Source = v
	}
	if v := os.Getenv("CFL_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("CFL_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	var errs []error
	check := func(name, v string, allowed ...string) {
		for _, a := range allowed {
			if v == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%s must be one of %s, got %q", name, strings.Join(allowed, ", "), v))
	}
	check("book.driver", c.Book.Driver, "jsonl", "sqlite")
	check("prices.history", c.Prices.History, "coingecko", "eodhd", "none")
	check("live.source", c.Live.Source, "binance", "coingecko", "jsonpath", "none")
	check("logging.format", c.Logging.Format, "text", "json")
	if c.Prices.Window < 0 {
		errs = append(errs, fmt.Errorf("prices.window must not be negative, got %d", c.Prices.Window))
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// NewLogger returns the logger described by the logging configuration,
// writing to w. verbose forces the debug level.
func (c *LoggingConfig) NewLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	if c.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
