package livefeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// DefaultStreamURL is the Binance public market stream.
const DefaultStreamURL = "wss://stream.binance.com:9443"

// QuoteAsset is the asset miniTicker pairs are quoted in.
const QuoteAsset = "USDT"

const (
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
	writeTimeout     = 10 * time.Second
	pingInterval     = 30 * time.Second
)

// Reconnect delays, variables so tests can shorten them.
var (
	reconnectMin = 1 * time.Second
	reconnectMax = 30 * time.Second
)

// StreamURL returns the combined miniTicker stream URL of symbols on base.
func StreamURL(base string, symbols []string) string {
	streams := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		streams = append(streams, strings.ToLower(normalize(sym)+QuoteAsset)+"@miniTicker")
	}
	return strings.TrimSuffix(base, "/") + "/stream?streams=" + strings.Join(streams, "/")
}

// miniTicker is the payload of a 24hrMiniTicker event, only the fields in use.
//
//	{"e":"24hrMiniTicker","E":1672515782136,"s":"BTCUSDT","c":"16850.10","o":"...","h":"...","l":"...","v":"...","q":"..."}
type miniTicker struct {
	Event  string          `json:"e"`
	Symbol string          `json:"s"`
	Close  decimal.Decimal `json:"c"`
}

// Stream feeds live prices of symbols from the miniTicker stream at base
// until ctx is done. It reconnects with an exponential backoff.
func (f *Feed) Stream(ctx context.Context, base string, symbols []string) error {
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols to stream")
	}
	addr := StreamURL(base, symbols)
	delay := reconnectMin
	for {
		if ctx.Err() != nil {
			return nil
		}
		err := f.connect(ctx, addr)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			delay = reconnectMin
			continue
		}
		f.log.WithError(err).WithField("delay", delay).Warn("live stream disconnected, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, reconnectMax)
	}
}

// connect runs a single websocket connection.
func (f *Feed) connect(ctx context.Context, addr string) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()
	f.log.WithField("url", addr).Info("live stream connected")

	// Unblock the reader when ctx is done.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	done := make(chan struct{})
	defer close(done)
	pings := time.NewTicker(pingInterval)
	defer pings.Stop()
	go func() {
		for {
			select {
			case <-done:
				return
			case <-pings.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					return
				}
			}
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}
		prices, err := decodeTickers(msg)
		if err != nil {
			f.log.WithError(err).Debug("undecodable stream message")
			continue
		}
		if len(prices) > 0 {
			f.SetPrices(prices)
		}
	}
}

// decodeTickers reads the prices of a stream message: a single event, an
// array of events or a combined stream envelope.
func decodeTickers(msg []byte) (map[string]float64, error) {
	msg = bytes.TrimSpace(msg)
	var events []miniTicker
	switch {
	case len(msg) > 0 && msg[0] == '[':
		if err := json.Unmarshal(msg, &events); err != nil {
			return nil, err
		}
	default:
		var envelope struct {
			Stream string          `json:"stream"`
			Data   json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(msg, &envelope); err != nil {
			return nil, err
		}
		if envelope.Data != nil {
			return decodeTickers(envelope.Data)
		}
		var ev miniTicker
		if err := json.Unmarshal(msg, &ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	prices := make(map[string]float64)
	for _, ev := range events {
		if ev.Event != "24hrMiniTicker" {
			continue
		}
		base, ok := strings.CutSuffix(normalize(ev.Symbol), QuoteAsset)
		if !ok || base == "" {
			continue
		}
		prices[base] = ev.Close.InexactFloat64()
	}
	return prices, nil
}
