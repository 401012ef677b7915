// Package sqlite stores a book of trades in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/coinfolio"
	_ "github.com/mattn/go-sqlite3"
)

// Store is a coinfolio.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ coinfolio.Store = (*Store)(nil)

// Open opens or creates the database at path and its schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListAccounts(ctx context.Context) ([]coinfolio.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, kind FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []coinfolio.Account
	for rows.Next() {
		var a coinfolio.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Kind); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) ListTrades(ctx context.Context) ([]coinfolio.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, timestamp, kind, note, pair, pair_price FROM trades ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []coinfolio.Trade
	for rows.Next() {
		var t coinfolio.Trade
		var ts string
		if err := rows.Scan(&t.ID, &ts, &t.Kind, &t.Note, &t.Pair, &t.PairPrice); err != nil {
			return nil, err
		}
		if t.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("trade %d: %w", t.ID, err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (s *Store) ListLedgerEntries(ctx context.Context) ([]coinfolio.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, trade_id, account_id, symbol, amount, price FROM ledger_entries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []coinfolio.LedgerEntry
	for rows.Next() {
		var e coinfolio.LedgerEntry
		var price sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.TradeID, &e.AccountID, &e.Symbol, &e.Amount, &price); err != nil {
			return nil, err
		}
		if price.Valid {
			e.Price = coinfolio.USD(price.Float64)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Record stores the trade and its entries in a single transaction.
func (s *Store) Record(ctx context.Context, d coinfolio.Draft) (coinfolio.Trade, error) {
	if err := d.Validate(); err != nil {
		return coinfolio.Trade{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return coinfolio.Trade{}, err
	}
	defer tx.Rollback()

	t := d.Trade
	res, err := tx.ExecContext(ctx, `
		INSERT INTO trades (timestamp, kind, note, pair, pair_price)
		VALUES (?, ?, ?, ?, ?)`,
		t.Timestamp.Format(time.RFC3339Nano), t.Kind, t.Note, t.Pair, t.PairPrice,
	)
	if err != nil {
		return coinfolio.Trade{}, fmt.Errorf("could not insert trade: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return coinfolio.Trade{}, err
	}

	for _, e := range d.Entries {
		var price sql.NullFloat64
		if e.Price != nil {
			price = sql.NullFloat64{Float64: *e.Price, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_entries (trade_id, account_id, symbol, amount, price)
			VALUES (?, ?, ?, ?, ?)`,
			t.ID, e.AccountID, coinfolio.NormalizeSymbol(e.Symbol), e.Amount, price,
		); err != nil {
			return coinfolio.Trade{}, fmt.Errorf("could not insert entry: %w", err)
		}
	}
	return t, tx.Commit()
}

func (s *Store) DeleteTrade(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, `DELETE FROM trades WHERE id = ?`, "trade", id)
}

func (s *Store) SaveAccount(ctx context.Context, a coinfolio.Account) (coinfolio.Account, error) {
	if a.Name == "" {
		return a, fmt.Errorf("%w: account name is empty", coinfolio.ErrInvalid)
	}
	kind, err := coinfolio.ParseAccountKind(string(a.Kind))
	if err != nil {
		return a, err
	}
	a.Kind = kind

	if a.ID == 0 {
		res, err := s.db.ExecContext(ctx, `INSERT INTO accounts (name, kind) VALUES (?, ?)`, a.Name, a.Kind)
		if err != nil {
			return a, fmt.Errorf("could not insert account: %w", err)
		}
		a.ID, err = res.LastInsertId()
		return a, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET name = ?, kind = ? WHERE id = ?`, a.Name, a.Kind, a.ID)
	if err != nil {
		return a, fmt.Errorf("could not update account: %w", err)
	}
	return a, affected(res, "account", a.ID)
}

func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, `DELETE FROM accounts WHERE id = ?`, "account", id)
}

func (s *Store) deleteByID(ctx context.Context, query, what string, id int64) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("could not delete %s %d: %w", what, id, err)
	}
	return affected(res, what, id)
}

// affected returns ErrNotFound when no row was touched.
func affected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, coinfolio.ErrNotFound)
	}
	return nil
}

// Import copies every account and trade of src into the store, keeping
// trades atomic. It is used to migrate a JSONL book.
func (s *Store) Import(ctx context.Context, src coinfolio.Store) error {
	accounts, err := src.ListAccounts(ctx)
	if err != nil {
		return err
	}
	ids := make(map[int64]int64, len(accounts))
	for _, a := range accounts {
		old := a.ID
		a.ID = 0
		saved, err := s.SaveAccount(ctx, a)
		if err != nil {
			return err
		}
		ids[old] = saved.ID
	}

	trades, err := src.ListTrades(ctx)
	if err != nil {
		return err
	}
	entries, err := src.ListLedgerEntries(ctx)
	if err != nil {
		return err
	}
	byTrade := make(map[int64][]coinfolio.LedgerEntry)
	for _, e := range entries {
		if id, ok := ids[e.AccountID]; ok {
			e.AccountID = id
		}
		byTrade[e.TradeID] = append(byTrade[e.TradeID], e)
	}
	var errs error
	for _, t := range trades {
		if _, err := s.Record(ctx, coinfolio.Draft{Trade: t, Entries: byTrade[t.ID]}); err != nil {
			errs = errors.Join(errs, fmt.Errorf("trade %d: %w", t.ID, err))
		}
	}
	return errs
}
