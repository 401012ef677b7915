package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	c, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "jsonl", c.Book.Driver)
	assert.Equal(t, "coingecko", c.Prices.History)
	assert.Equal(t, 30, c.Prices.Window)
	assert.Equal(t, 15*time.Minute, c.Prices.GetCacheTTL())
	assert.Equal(t, time.Minute, c.Live.GetPollInterval())
}

func TestLoad_FilesAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	first := filepath.Join(dir, "a.toml")
	second := filepath.Join(dir, "b.toml")
	require.NoError(t, os.WriteFile(first, []byte(`
[book]
path = "/tmp/a.db"
driver = "sqlite"

[prices]
history = "eodhd"
window = 90
cache_ttl = "1h"
stable = ["USDT", "EURC"]

[coingecko.ids]
WIF = "dogwifcoin"

[live.jsonpath]
url = "https://example.com/quote"
paths = { XYZ = "$.last" }
`), 0o600))
	require.NoError(t, os.WriteFile(second, []byte(`
[prices]
window = 7
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CFL_EODHD_API_KEY=from-dotenv\n"), 0o600))
	t.Setenv("CFL_LOG_LEVEL", "debug")
	// Unset but restored after the test, .env values never override the environment.
	t.Setenv("CFL_EODHD_API_KEY", "")
	os.Unsetenv("CFL_EODHD_API_KEY")

	c, err := Load(first, second)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/a.db", c.Book.Path)
	assert.Equal(t, "sqlite", c.Book.Driver)
	assert.Equal(t, "eodhd", c.Prices.History)
	assert.Equal(t, 7, c.Prices.Window, "later files override earlier ones")
	assert.Equal(t, time.Hour, c.Prices.GetCacheTTL())
	assert.Equal(t, []string{"USDT", "EURC"}, c.Prices.Stable)
	assert.Equal(t, "dogwifcoin", c.CoinGecko.IDs["WIF"])
	assert.Equal(t, "$.last", c.Live.JSONPath.Paths["XYZ"])
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, "from-dotenv", c.EODHD.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[book]\ndriver = \"csv\"\n"), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "book.driver")

	require.NoError(t, os.WriteFile(path, []byte("[book\n"), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	c := LoggingConfig{Level: "info", Format: "json"}
	log := c.NewLogger(&buf, false)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	log.WithField("symbol", "BTC").Info("hello")
	assert.Contains(t, buf.String(), `"symbol":"BTC"`)

	assert.Equal(t, logrus.DebugLevel, c.NewLogger(&buf, true).GetLevel())
}
