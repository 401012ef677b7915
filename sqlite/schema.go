package sqlite

// Schema creates the tables of a book. Entries keep dangling account ids
// when an account is deleted, but go away with their trade.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT 'other'
);

CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	kind TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	pair TEXT NOT NULL DEFAULT '',
	pair_price REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trade_id INTEGER NOT NULL REFERENCES trades(id) ON DELETE CASCADE,
	account_id INTEGER NOT NULL DEFAULT 0,
	symbol TEXT NOT NULL,
	amount REAL NOT NULL,
	price REAL
);

CREATE INDEX IF NOT EXISTS idx_entries_trade ON ledger_entries(trade_id);

CREATE TABLE IF NOT EXISTS overrides (
	symbol TEXT PRIMARY KEY,
	price REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS targets (
	symbol TEXT PRIMARY KEY,
	percent REAL NOT NULL
);
`
