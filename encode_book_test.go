package coinfolio

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEncodeBook(t *testing.T) {
	ctx := context.Background()
	b := NewBook()
	must(b.SaveAccount(ctx, Account{Name: "Ledger", Kind: AccountWallet}))
	must(b.Record(ctx, must(NewDeposit(time.Date(2025, time.May, 2, 8, 0, 0, 0, time.UTC), 1, "BTC", 0.1, USD(30000)))))
	must(b.Record(ctx, must(NewDeposit(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), 1, "ETH", 2, nil))))
	must(0, b.SetOverride("XYZ", 1.25))
	must(0, b.SetTarget("BTC", 60))

	var buf bytes.Buffer
	if err := EncodeBook(&buf, b); err != nil {
		t.Fatalf("EncodeBook() error = %v", err)
	}
	want := `{"account":{"id":1,"name":"Ledger","kind":"wallet"}}
{"trade":{"id":2,"timestamp":"2025-05-01T08:00:00Z","kind":"deposit"},"entries":[{"id":2,"account":1,"symbol":"ETH","amount":2}]}
{"trade":{"id":1,"timestamp":"2025-05-02T08:00:00Z","kind":"deposit"},"entries":[{"id":1,"account":1,"symbol":"BTC","amount":0.1,"price":30000}]}
{"override":{"symbol":"XYZ","price":1.25}}
{"target":{"symbol":"BTC","percent":60}}
`
	if got := buf.String(); got != want {
		t.Errorf("EncodeBook() =\n%s\nwant\n%s", got, want)
	}
}

func TestDecodeBook(t *testing.T) {
	in := `{"account":{"id":3,"name":"Kraken","kind":"exchange"}}

{"trade":{"id":7,"timestamp":"2025-05-01T08:00:00Z","kind":"sell","pair":"ETH/USDC","pairPrice":2200},"entries":[{"id":11,"account":3,"symbol":"eth","amount":-1,"price":2000},{"id":12,"account":3,"symbol":"USDC","amount":2200,"price":1}]}
{"override":{"symbol":"xyz","price":2}}
`
	b, err := DecodeBook(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeBook() error = %v", err)
	}
	ctx := context.Background()
	entries, trades := must(b.ListLedgerEntries(ctx)), must(b.ListTrades(ctx))
	if got := ComputeRealizedPnL(entries, trades); got != 200 {
		t.Errorf("ComputeRealizedPnL() of decoded book = %v, want 200", got)
	}
	if entries[0].Symbol != "ETH" {
		t.Errorf("decoded symbol = %q, want ETH", entries[0].Symbol)
	}
	if b.Overrides()["XYZ"] != 2 {
		t.Errorf("Overrides() = %v, want XYZ at 2", b.Overrides())
	}

	// New records continue after the largest identifiers read.
	tr := must(b.Record(ctx, must(NewDeposit(at(0), 3, "BTC", 1, nil))))
	if tr.ID != 8 {
		t.Errorf("Record().ID = %d, want 8", tr.ID)
	}
	a := must(b.SaveAccount(ctx, Account{Name: "Cold"}))
	if a.ID != 4 {
		t.Errorf("SaveAccount().ID = %d, want 4", a.ID)
	}
}

func TestDecodeBook_Errors(t *testing.T) {
	for _, in := range []string{
		`{"trade":{"id":1,"kind":"swap"}}`,
		`{"account":{"id":0,"name":"x"}}`,
		`{"nothing":{}}`,
		`{"override":{"symbol":"X"}}`,
		`not json`,
	} {
		if _, err := DecodeBook(strings.NewReader(in)); err == nil {
			t.Errorf("DecodeBook(%s) succeeded, want an error", in)
		}
	}
}

func TestBookFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.jsonl")

	b, err := LoadBookFile(path)
	if err != nil {
		t.Fatalf("LoadBookFile(missing) error = %v", err)
	}
	must(b.Record(context.Background(), must(NewDeposit(at(0), 0, "BTC", 1, USD(10)))))
	if err := SaveBookFile(path, b); err != nil {
		t.Fatalf("SaveBookFile() error = %v", err)
	}

	again, err := LoadBookFile(path)
	if err != nil {
		t.Fatalf("LoadBookFile() error = %v", err)
	}
	entries := must(again.ListLedgerEntries(context.Background()))
	if len(entries) != 1 || entries[0].Amount != 1 || *entries[0].Price != 10 {
		t.Errorf("reloaded entries = %v, want 1 BTC at 10", entries)
	}
}
