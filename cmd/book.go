package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/sqlite"
)

// book is a store together with its manual prices and target allocations.
type book interface {
	coinfolio.Store
	Overrides(ctx context.Context) (map[string]float64, error)
	SetOverride(ctx context.Context, symbol string, price float64) error
	ClearOverride(ctx context.Context, symbol string) error
	Targets(ctx context.Context) ([]coinfolio.TargetAllocation, error)
	SetTarget(ctx context.Context, symbol string, percent float64) error
	// Commit persists the changes made so far.
	Commit() error
	Close() error
}

// openBook opens the book of the configuration.
func (e *env) openBook() (book, error) {
	path := e.cfg.Book.Path
	switch e.cfg.Book.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		return sqliteBook{s}, nil
	default:
		b, err := coinfolio.LoadBookFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &jsonlBook{Store: b, book: b, path: path}, nil
	}
}

// sqliteBook writes every change immediately.
type sqliteBook struct {
	*sqlite.Store
}

func (sqliteBook) Commit() error { return nil }

// jsonlBook keeps the book in memory and rewrites the file on Commit.
type jsonlBook struct {
	coinfolio.Store
	book *coinfolio.Book
	path string
}

func (b *jsonlBook) Overrides(context.Context) (map[string]float64, error) {
	return b.book.Overrides(), nil
}

func (b *jsonlBook) SetOverride(_ context.Context, symbol string, price float64) error {
	return b.book.SetOverride(symbol, price)
}

func (b *jsonlBook) ClearOverride(_ context.Context, symbol string) error {
	b.book.ClearOverride(symbol)
	return nil
}

func (b *jsonlBook) Targets(context.Context) ([]coinfolio.TargetAllocation, error) {
	return b.book.Targets(), nil
}

func (b *jsonlBook) SetTarget(_ context.Context, symbol string, percent float64) error {
	return b.book.SetTarget(symbol, percent)
}

func (b *jsonlBook) Commit() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}
	return coinfolio.SaveBookFile(b.path, b.book)
}

func (b *jsonlBook) Close() error { return nil }
