package livefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// PollSource returns the latest prices of some assets.
type PollSource interface {
	Prices(ctx context.Context) (map[string]float64, error)
}

// Poll feeds prices from src now and then every interval until ctx is done.
// Failures are logged and the previous prices are kept.
func (f *Feed) Poll(ctx context.Context, src PollSource, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		prices, err := src.Prices(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			f.log.WithError(err).Warn("live price poll failed")
		default:
			f.SetPrices(prices)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// JSONPathSource reads prices from a JSON document. Paths maps a symbol to the
// JSONPath of its price in the document at URL.
type JSONPathSource struct {
	Client *http.Client
	URL    string
	Paths  map[string]string
}

// Prices fetches the document and extracts every price. A path that does
// not resolve to a positive number is an error.
func (s JSONPathSource) Prices(ctx context.Context) (map[string]float64, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(s.Paths))
	for sym, path := range s.Paths {
		val, err := extract(jobj, path)
		if err != nil {
			return nil, fmt.Errorf("error reading %s price at %q: %w", sym, path, err)
		}
		prices[normalize(sym)] = val
	}
	return prices, nil
}

// extract evaluates path on jobj and reads the result as a price.
func extract(jobj any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, err
	}
	// jsonpath returns either a single answer or a list of answers, keep the first one.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	var val float64
	switch v := jval.(type) {
	case float64:
		val = v
	case string:
		// Some APIs send numbers as strings, sometimes with a decimal comma.
		v = strings.ReplaceAll(strings.ReplaceAll(v, ",", "."), " ", "")
		if val, err = strconv.ParseFloat(v, 64); err != nil {
			return 0, fmt.Errorf("invalid number %q: %w", v, err)
		}
	default:
		return 0, fmt.Errorf("not a number: %v", jval)
	}
	if !usable(val) {
		return 0, fmt.Errorf("not a positive price: %v", val)
	}
	return val, nil
}
