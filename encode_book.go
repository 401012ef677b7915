package coinfolio

import (
	"bufio"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Book files are JSONL: one record per line, the record kind given by the
// single top level key.
//
//	{"account":{"id":1,"name":"Ledger","kind":"wallet"}}
//	{"trade":{"id":1,"timestamp":"...","kind":"deposit"},"entries":[{"id":1,"account":1,"symbol":"BTC","amount":0.5,"price":30000}]}
//	{"override":{"symbol":"XYZ","price":1.25}}
//	{"target":{"symbol":"BTC","percent":60}}
//
// Amounts and prices are written as decimals so a round trip does not add
// float formatting noise to the file.

type accountLine struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Kind AccountKind `json:"kind,omitempty"`
}

type tradeLine struct {
	ID        int64            `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Kind      TradeKind        `json:"kind"`
	Note      string           `json:"note,omitempty"`
	Pair      string           `json:"pair,omitempty"`
	PairPrice *decimal.Decimal `json:"pairPrice,omitempty"`
}

type entryLine struct {
	ID      int64            `json:"id"`
	Account int64            `json:"account,omitempty"`
	Symbol  string           `json:"symbol"`
	Amount  decimal.Decimal  `json:"amount"`
	Price   *decimal.Decimal `json:"price,omitempty"`
}

type symbolValue struct {
	Symbol  string           `json:"symbol"`
	Price   *decimal.Decimal `json:"price,omitempty"`
	Percent *decimal.Decimal `json:"percent,omitempty"`
}

type bookLine struct {
	Account  *accountLine `json:"account,omitempty"`
	Trade    *tradeLine   `json:"trade,omitempty"`
	Entries  []entryLine  `json:"entries,omitempty"`
	Override *symbolValue `json:"override,omitempty"`
	Target   *symbolValue `json:"target,omitempty"`
}

func dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// EncodeBook writes the book to w in JSONL format: accounts, then trades in
// chronological order with their entries, then overrides and targets.
func EncodeBook(w io.Writer, b *Book) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	enc := json.NewEncoder(w)
	write := func(l bookLine) error {
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("failed to write book line: %w", err)
		}
		return nil
	}

	for _, a := range b.accounts {
		if err := write(bookLine{Account: &accountLine{ID: a.ID, Name: a.Name, Kind: a.Kind}}); err != nil {
			return err
		}
	}

	byTrade := make(map[int64][]entryLine)
	for _, e := range b.entries {
		l := entryLine{ID: e.ID, Account: e.AccountID, Symbol: e.Symbol, Amount: decimal.NewFromFloat(e.Amount)}
		if e.Price != nil {
			l.Price = dec(*e.Price)
		}
		byTrade[e.TradeID] = append(byTrade[e.TradeID], l)
	}
	trades := slices.Clone(b.trades)
	slices.SortStableFunc(trades, func(x, y Trade) int {
		if c := x.Timestamp.Compare(y.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	for _, t := range trades {
		l := tradeLine{ID: t.ID, Timestamp: t.Timestamp, Kind: t.Kind, Note: t.Note, Pair: t.Pair}
		if t.Pair != "" {
			l.PairPrice = dec(t.PairPrice)
		}
		if err := write(bookLine{Trade: &l, Entries: byTrade[t.ID]}); err != nil {
			return err
		}
	}

	for _, sym := range slices.Sorted(maps.Keys(b.overrides)) {
		if err := write(bookLine{Override: &symbolValue{Symbol: sym, Price: dec(b.overrides[sym])}}); err != nil {
			return err
		}
	}
	for _, sym := range slices.Sorted(maps.Keys(b.targets)) {
		if err := write(bookLine{Target: &symbolValue{Symbol: sym, Percent: dec(b.targets[sym])}}); err != nil {
			return err
		}
	}
	return nil
}

// DecodeBook reads a JSONL book. Identifiers are preserved; new records get
// identifiers after the largest one read.
func DecodeBook(r io.Reader) (*Book, error) {
	b := NewBook()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var l bookLine
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, fmt.Errorf("line %d: could not decode %q: %w", n, string(line), err)
		}
		if err := b.load(l); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading book: %w", err)
	}
	return b, nil
}

func (b *Book) load(l bookLine) error {
	switch {
	case l.Account != nil:
		kind, err := ParseAccountKind(string(l.Account.Kind))
		if err != nil {
			return err
		}
		if l.Account.ID <= 0 {
			return fmt.Errorf("%w: account id must be positive", ErrInvalid)
		}
		b.accounts = append(b.accounts, Account{ID: l.Account.ID, Name: l.Account.Name, Kind: kind})
		b.lastAccount = max(b.lastAccount, l.Account.ID)
	case l.Trade != nil:
		kind, err := ParseTradeKind(string(l.Trade.Kind))
		if err != nil {
			return err
		}
		if l.Trade.ID <= 0 {
			return fmt.Errorf("%w: trade id must be positive", ErrInvalid)
		}
		t := Trade{ID: l.Trade.ID, Timestamp: l.Trade.Timestamp, Kind: kind, Note: l.Trade.Note, Pair: l.Trade.Pair}
		if l.Trade.PairPrice != nil {
			t.PairPrice = l.Trade.PairPrice.InexactFloat64()
		}
		b.trades = append(b.trades, t)
		b.lastTrade = max(b.lastTrade, t.ID)
		for _, el := range l.Entries {
			e := LedgerEntry{
				ID:        el.ID,
				TradeID:   t.ID,
				AccountID: el.Account,
				Symbol:    NormalizeSymbol(el.Symbol),
				Amount:    el.Amount.InexactFloat64(),
			}
			if el.Price != nil {
				e.Price = USD(el.Price.InexactFloat64())
			}
			b.entries = append(b.entries, e)
			b.lastEntry = max(b.lastEntry, e.ID)
		}
	case l.Override != nil:
		if l.Override.Price == nil {
			return fmt.Errorf("%w: override of %q has no price", ErrInvalid, l.Override.Symbol)
		}
		b.overrides[NormalizeSymbol(l.Override.Symbol)] = l.Override.Price.InexactFloat64()
	case l.Target != nil:
		if l.Target.Percent == nil {
			return fmt.Errorf("%w: target of %q has no percent", ErrInvalid, l.Target.Symbol)
		}
		b.targets[NormalizeSymbol(l.Target.Symbol)] = l.Target.Percent.InexactFloat64()
	default:
		return fmt.Errorf("%w: unknown record", ErrInvalid)
	}
	return nil
}

// LoadBookFile decodes the book stored at path. A missing file is an empty book.
func LoadBookFile(path string) (*Book, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewBook(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open book: %w", err)
	}
	defer f.Close()
	return DecodeBook(f)
}

// SaveBookFile writes the book at path, replacing it atomically.
func SaveBookFile(path string, b *Book) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create book file: %w", err)
	}
	defer os.Remove(f.Name())

	w := bufio.NewWriter(f)
	if err := EncodeBook(w, b); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("could not write book file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not write book file: %w", err)
	}
	return os.Rename(f.Name(), path)
}
