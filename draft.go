package coinfolio

import (
	"errors"
	"fmt"
	"time"
)

// Leg is one side of an exchange: a positive quantity of an asset, with an
// optional USD price per unit.
type Leg struct {
	Symbol string
	Amount float64
	Price  *float64
}

// Draft is a trade and its entries before a store assigns identifiers.
type Draft struct {
	Trade   Trade
	Entries []LedgerEntry
}

// NewDeposit records an inflow of qty units bought at price (may be nil).
func NewDeposit(at time.Time, account int64, symbol string, qty float64, price *float64) (Draft, error) {
	return single(KindDeposit, at, account, Leg{symbol, qty, price}, 1)
}

// NewWithdraw records an outflow of qty units.
func NewWithdraw(at time.Time, account int64, symbol string, qty float64, price *float64) (Draft, error) {
	return single(KindWithdraw, at, account, Leg{symbol, qty, price}, -1)
}

// NewGain records free inventory (airdrop, staking reward). The price is kept
// for display, it never enters the cost basis.
func NewGain(at time.Time, account int64, symbol string, qty float64, price *float64) (Draft, error) {
	return single(KindGain, at, account, Leg{symbol, qty, price}, 1)
}

// NewLoss records units lost (fee, hack, write-off).
func NewLoss(at time.Time, account int64, symbol string, qty float64, price *float64) (Draft, error) {
	return single(KindLoss, at, account, Leg{symbol, qty, price}, -1)
}

// NewTrade records an exchange of 'sold' for 'received' in the same account.
func NewTrade(at time.Time, account int64, sold, received Leg) (Draft, error) {
	return exchange(KindTrade, at, account, sold, received)
}

// NewBuy records buying 'received' with 'sold' on a trading pair at pairPrice.
func NewBuy(at time.Time, account int64, pair string, pairPrice float64, sold, received Leg) (Draft, error) {
	d, err := exchange(KindBuy, at, account, sold, received)
	if err != nil {
		return d, err
	}
	return withPair(d, pair, pairPrice)
}

// NewSell records selling 'sold' for 'received' on a trading pair at pairPrice.
func NewSell(at time.Time, account int64, pair string, pairPrice float64, sold, received Leg) (Draft, error) {
	d, err := exchange(KindSell, at, account, sold, received)
	if err != nil {
		return d, err
	}
	return withPair(d, pair, pairPrice)
}

// NewTransfer records moving qty units of symbol between two accounts.
func NewTransfer(at time.Time, from, to int64, symbol string, qty float64) (Draft, error) {
	if from == to {
		return Draft{}, fmt.Errorf("%w: transfer source and destination are the same account %d", ErrInvalid, from)
	}
	sym, err := checkLeg(Leg{symbol, qty, nil})
	if err != nil {
		return Draft{}, fmt.Errorf("invalid transfer: %w", err)
	}
	return Draft{
		Trade: Trade{Timestamp: at, Kind: KindTransfer},
		Entries: []LedgerEntry{
			{AccountID: from, Symbol: sym, Amount: -qty},
			{AccountID: to, Symbol: sym, Amount: qty},
		},
	}, nil
}

func single(kind TradeKind, at time.Time, account int64, leg Leg, sign float64) (Draft, error) {
	sym, err := checkLeg(leg)
	if err != nil {
		return Draft{}, fmt.Errorf("invalid %s: %w", kind, err)
	}
	return Draft{
		Trade:   Trade{Timestamp: at, Kind: kind},
		Entries: []LedgerEntry{{AccountID: account, Symbol: sym, Amount: sign * leg.Amount, Price: leg.Price}},
	}, nil
}

func exchange(kind TradeKind, at time.Time, account int64, sold, received Leg) (Draft, error) {
	out, err := checkLeg(sold)
	if err != nil {
		return Draft{}, fmt.Errorf("invalid %s sold leg: %w", kind, err)
	}
	in, err := checkLeg(received)
	if err != nil {
		return Draft{}, fmt.Errorf("invalid %s received leg: %w", kind, err)
	}
	return Draft{
		Trade: Trade{Timestamp: at, Kind: kind},
		Entries: []LedgerEntry{
			{AccountID: account, Symbol: out, Amount: -sold.Amount, Price: sold.Price},
			{AccountID: account, Symbol: in, Amount: received.Amount, Price: received.Price},
		},
	}, nil
}

func withPair(d Draft, pair string, price float64) (Draft, error) {
	if !finite(price) || price < 0 {
		return Draft{}, fmt.Errorf("%w: pair price must be positive, got %v", ErrInvalid, price)
	}
	d.Trade.Pair, d.Trade.PairPrice = NormalizeSymbol(pair), price
	return d, nil
}

// checkLeg returns the normalized symbol of a well formed leg.
func checkLeg(l Leg) (string, error) {
	sym, err := ParseSymbol(l.Symbol)
	if err != nil {
		return "", err
	}
	if !finite(l.Amount) || l.Amount <= 0 {
		return "", fmt.Errorf("%w: quantity must be positive, got %v", ErrInvalid, l.Amount)
	}
	if l.Price != nil && (!finite(*l.Price) || *l.Price < 0) {
		return "", fmt.Errorf("%w: price must not be negative, got %v", ErrInvalid, *l.Price)
	}
	return sym, nil
}

// Validate checks the leg shape of the draft against its kind.
func (d Draft) Validate() error {
	var neg, pos []LedgerEntry
	var errs error
	for _, e := range d.Entries {
		if _, err := checkLeg(Leg{e.Symbol, abs(e.Amount), e.Price}); err != nil {
			errs = errors.Join(errs, err)
		}
		if e.Amount < 0 {
			neg = append(neg, e)
		} else {
			pos = append(pos, e)
		}
	}
	if errs != nil {
		return fmt.Errorf("invalid %s: %w", d.Trade.Kind, errs)
	}

	want := func(n, p int) error {
		if len(neg) != n || len(pos) != p {
			return fmt.Errorf("%w: %s needs %d outflow and %d inflow entries, got %d and %d", ErrInvalid, d.Trade.Kind, n, p, len(neg), len(pos))
		}
		return nil
	}
	switch d.Trade.Kind {
	case KindTrade, KindBuy, KindSell:
		return want(1, 1)
	case KindDeposit, KindGain:
		return want(0, 1)
	case KindWithdraw, KindLoss:
		return want(1, 0)
	case KindTransfer:
		if err := want(1, 1); err != nil {
			return err
		}
		switch {
		case NormalizeSymbol(neg[0].Symbol) != NormalizeSymbol(pos[0].Symbol):
			return fmt.Errorf("%w: transfer legs move different assets %s and %s", ErrInvalid, neg[0].Symbol, pos[0].Symbol)
		case -neg[0].Amount != pos[0].Amount:
			return fmt.Errorf("%w: transfer legs differ in magnitude %v and %v", ErrInvalid, -neg[0].Amount, pos[0].Amount)
		case neg[0].AccountID == pos[0].AccountID:
			return fmt.Errorf("%w: transfer source and destination are the same account %d", ErrInvalid, neg[0].AccountID)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown trade kind %q", ErrInvalid, d.Trade.Kind)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
