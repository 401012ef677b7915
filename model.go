package coinfolio

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// TradeKind is the kind of financial event a Trade records.
type TradeKind string

const (
	KindTrade    TradeKind = "trade"
	KindDeposit  TradeKind = "deposit"
	KindWithdraw TradeKind = "withdraw"
	KindTransfer TradeKind = "transfer"
	KindBuy      TradeKind = "buy"
	KindSell     TradeKind = "sell"
	KindGain     TradeKind = "gain"
	KindLoss     TradeKind = "loss"
)

// TradeKinds lists all kinds in display order.
var TradeKinds = []TradeKind{KindTrade, KindBuy, KindSell, KindDeposit, KindWithdraw, KindTransfer, KindGain, KindLoss}

// ParseTradeKind parses a string into a TradeKind.
func ParseTradeKind(s string) (TradeKind, error) {
	k := TradeKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TradeKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown trade kind %q", ErrInvalid, s)
}

// IsExchange reports whether the kind has two legs: one asset out, one asset in.
func (k TradeKind) IsExchange() bool { return k == KindTrade || k == KindBuy || k == KindSell }

// AccountKind classifies an Account.
type AccountKind string

const (
	AccountWallet   AccountKind = "wallet"
	AccountBank     AccountKind = "bank"
	AccountExchange AccountKind = "exchange"
	AccountCustody  AccountKind = "custody"
	AccountOther    AccountKind = "other"
)

// ParseAccountKind parses an account kind, empty means other.
func ParseAccountKind(s string) (AccountKind, error) {
	switch k := AccountKind(strings.ToLower(strings.TrimSpace(s))); k {
	case AccountWallet, AccountBank, AccountExchange, AccountCustody, AccountOther:
		return k, nil
	case "":
		return AccountOther, nil
	default:
		return "", fmt.Errorf("%w: unknown account kind %q", ErrInvalid, s)
	}
}

// Account is a named bucket entries reference. ID 0 means "no account".
type Account struct {
	ID   int64
	Name string
	Kind AccountKind
}

// Trade is the parent record of one financial event.
type Trade struct {
	ID        int64
	Timestamp time.Time
	Kind      TradeKind
	Note      string
	// Pair and PairPrice are only set for buy and sell.
	Pair      string
	PairPrice float64
}

// LedgerEntry is one signed asset movement of a Trade.
type LedgerEntry struct {
	ID        int64
	TradeID   int64
	AccountID int64
	Symbol    string
	// Amount is positive for an inflow, negative for an outflow.
	Amount float64
	// Price is the USD price of one unit at execution time, nil when unknown.
	Price *float64
}

// USD returns a price snapshot pointer for v.
func USD(v float64) *float64 { return &v }

// price returns the snapshot price when it is a usable value.
func (e LedgerEntry) price() (float64, bool) {
	if e.Price == nil || !finite(*e.Price) || *e.Price < 0 {
		return 0, false
	}
	return *e.Price, true
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9._-]{0,31}$`)

// NormalizeSymbol upper-cases and trims an asset symbol.
func NormalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// ParseSymbol normalizes s and checks that it is a well formed asset symbol.
func ParseSymbol(s string) (string, error) {
	sym := NormalizeSymbol(s)
	if !symbolPattern.MatchString(sym) {
		return "", fmt.Errorf("%w: malformed symbol %q", ErrInvalid, s)
	}
	return sym, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
