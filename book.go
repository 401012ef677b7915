package coinfolio

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Store is the persistent store of accounts, trades and entries.
//
// List operations return full unfiltered snapshots; Record is atomic: either
// the trade and all of its entries are stored, or nothing is.
type Store interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	ListTrades(ctx context.Context) ([]Trade, error)
	ListLedgerEntries(ctx context.Context) ([]LedgerEntry, error)

	// Record validates and stores a draft, assigning identifiers. It returns the stored trade.
	Record(ctx context.Context, d Draft) (Trade, error)
	// DeleteTrade deletes a trade and its entries.
	DeleteTrade(ctx context.Context, id int64) error

	// SaveAccount creates (ID 0) or updates an account.
	SaveAccount(ctx context.Context, a Account) (Account, error)
	// DeleteAccount deletes an account. Entries keep their now dangling reference.
	DeleteAccount(ctx context.Context, id int64) error
}

// Book is an in-memory Store that also carries price overrides and target
// allocations. It is what the JSONL book file decodes into.
type Book struct {
	mu        sync.RWMutex
	accounts  []Account
	trades    []Trade
	entries   []LedgerEntry
	overrides map[string]float64
	targets   map[string]float64

	lastAccount, lastTrade, lastEntry int64
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{
		overrides: make(map[string]float64),
		targets:   make(map[string]float64),
	}
}

var _ Store = (*Book)(nil)

func (b *Book) ListAccounts(context.Context) ([]Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.accounts), nil
}

func (b *Book) ListTrades(context.Context) ([]Trade, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.trades), nil
}

func (b *Book) ListLedgerEntries(context.Context) ([]LedgerEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]LedgerEntry, len(b.entries))
	for i, e := range b.entries {
		out[i] = cloneEntry(e)
	}
	return out, nil
}

func (b *Book) Record(_ context.Context, d Draft) (Trade, error) {
	if err := d.Validate(); err != nil {
		return Trade{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastTrade++
	t := d.Trade
	t.ID = b.lastTrade
	b.trades = append(b.trades, t)
	for _, e := range d.Entries {
		b.lastEntry++
		e = cloneEntry(e)
		e.ID, e.TradeID, e.Symbol = b.lastEntry, t.ID, NormalizeSymbol(e.Symbol)
		b.entries = append(b.entries, e)
	}
	return t, nil
}

func (b *Book) DeleteTrade(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.trades, func(t Trade) bool { return t.ID == id })
	if i < 0 {
		return fmt.Errorf("trade %d: %w", id, ErrNotFound)
	}
	b.trades = slices.Delete(b.trades, i, i+1)
	b.entries = slices.DeleteFunc(b.entries, func(e LedgerEntry) bool { return e.TradeID == id })
	return nil
}

func (b *Book) SaveAccount(_ context.Context, a Account) (Account, error) {
	if a.Name == "" {
		return a, fmt.Errorf("%w: account name is empty", ErrInvalid)
	}
	kind, err := ParseAccountKind(string(a.Kind))
	if err != nil {
		return a, err
	}
	a.Kind = kind
	b.mu.Lock()
	defer b.mu.Unlock()
	if a.ID == 0 {
		b.lastAccount++
		a.ID = b.lastAccount
		b.accounts = append(b.accounts, a)
		return a, nil
	}
	i := slices.IndexFunc(b.accounts, func(x Account) bool { return x.ID == a.ID })
	if i < 0 {
		return a, fmt.Errorf("account %d: %w", a.ID, ErrNotFound)
	}
	b.accounts[i] = a
	return a, nil
}

func (b *Book) DeleteAccount(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.accounts, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	b.accounts = slices.Delete(b.accounts, i, i+1)
	return nil
}

// Overrides returns a copy of the manual price overrides.
func (b *Book) Overrides() map[string]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.overrides)
}

// SetOverride sets a manual price for symbol.
func (b *Book) SetOverride(symbol string, price float64) error {
	sym, err := CheckOverride(symbol, price)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[sym] = price
	return nil
}

// ClearOverride removes the manual price of symbol.
func (b *Book) ClearOverride(symbol string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.overrides, NormalizeSymbol(symbol))
}

// Targets returns the target allocations sorted by symbol.
func (b *Book) Targets() []TargetAllocation {
	b.mu.RLock()
	defer b.mu.RUnlock()
	targets := make([]TargetAllocation, 0, len(b.targets))
	for sym, pct := range b.targets {
		targets = append(targets, TargetAllocation{Symbol: sym, Percent: pct})
	}
	slices.SortFunc(targets, func(a, b TargetAllocation) int { return cmp.Compare(a.Symbol, b.Symbol) })
	return targets
}

// SetTarget sets the target allocation of symbol, zero removes it.
func (b *Book) SetTarget(symbol string, percent float64) error {
	sym, err := CheckTarget(symbol, percent)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if percent == 0 {
		delete(b.targets, sym)
		return nil
	}
	b.targets[sym] = percent
	return nil
}

// CheckOverride validates a manual price and returns the normalized symbol.
func CheckOverride(symbol string, price float64) (string, error) {
	sym, err := ParseSymbol(symbol)
	if err != nil {
		return "", err
	}
	if !finite(price) || price < 0 {
		return "", fmt.Errorf("%w: override price must not be negative, got %v", ErrInvalid, price)
	}
	return sym, nil
}

// CheckTarget validates a target allocation and returns the normalized symbol.
func CheckTarget(symbol string, percent float64) (string, error) {
	sym, err := ParseSymbol(symbol)
	if err != nil {
		return "", err
	}
	if !finite(percent) || percent < 0 || percent > 100 {
		return "", fmt.Errorf("%w: target percent must be within [0, 100], got %v", ErrInvalid, percent)
	}
	return sym, nil
}

func cloneEntry(e LedgerEntry) LedgerEntry {
	if e.Price != nil {
		e.Price = USD(*e.Price)
	}
	return e
}
