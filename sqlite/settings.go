package sqlite

import (
	"context"
	"fmt"

	"github.com/etnz/coinfolio"
)

// Overrides returns the manual price overrides.
func (s *Store) Overrides(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, price FROM overrides`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make(map[string]float64)
	for rows.Next() {
		var sym string
		var price float64
		if err := rows.Scan(&sym, &price); err != nil {
			return nil, err
		}
		overrides[sym] = price
	}
	return overrides, rows.Err()
}

// SetOverride sets a manual price for symbol.
func (s *Store) SetOverride(ctx context.Context, symbol string, price float64) error {
	sym, err := coinfolio.CheckOverride(symbol, price)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO overrides (symbol, price) VALUES (?, ?)
		ON CONFLICT(symbol) DO UPDATE SET price = excluded.price`, sym, price)
	if err != nil {
		return fmt.Errorf("could not save override of %s: %w", sym, err)
	}
	return nil
}

// ClearOverride removes the manual price of symbol.
func (s *Store) ClearOverride(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM overrides WHERE symbol = ?`, coinfolio.NormalizeSymbol(symbol))
	return err
}

// Targets returns the target allocations sorted by symbol.
func (s *Store) Targets(ctx context.Context) ([]coinfolio.TargetAllocation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, percent FROM targets ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []coinfolio.TargetAllocation
	for rows.Next() {
		var t coinfolio.TargetAllocation
		if err := rows.Scan(&t.Symbol, &t.Percent); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// SetTarget sets the target allocation of symbol, zero removes it.
func (s *Store) SetTarget(ctx context.Context, symbol string, percent float64) error {
	sym, err := coinfolio.CheckTarget(symbol, percent)
	if err != nil {
		return err
	}
	if percent == 0 {
		_, err = s.db.ExecContext(ctx, `DELETE FROM targets WHERE symbol = ?`, sym)
	} else {
		_, err = s.db.ExecContext(ctx, `INSERT INTO targets (symbol, percent) VALUES (?, ?)
			ON CONFLICT(symbol) DO UPDATE SET percent = excluded.percent`, sym, percent)
	}
	if err != nil {
		return fmt.Errorf("could not save target of %s: %w", sym, err)
	}
	return nil
}
