// Package coinfolio tracks multi-asset holdings from a chronological log of
// financial events and derives, at any point in time, the state of the
// portfolio.
//
// The core is a stateless replay engine:
//   - Holdings: per-asset quantity, weighted-average cost basis and last buy
//     price, folded from the ledger entries of each asset.
//   - Realized PnL: proceeds minus consumed cost basis of every sell.
//   - History: the daily value of the portfolio over a trailing window, each
//     day replayed from scratch and valued with a best-effort price.
//
// Prices are resolved by a Resolver from manual overrides, live prices,
// historical daily closes (forward-filled) and, as a last resort, the prices
// recorded in the ledger itself.
//
// Everything else in this module (stores, price providers, the live feed and
// the cfl command) feeds the engine with already fetched data and consumes the
// Snapshot it produces.
package coinfolio
