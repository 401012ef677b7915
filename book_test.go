package coinfolio

import (
	"context"
	"errors"
	"testing"
)

func TestBook_Record(t *testing.T) {
	ctx := context.Background()
	b := NewBook()

	first := must(b.Record(ctx, must(NewDeposit(at(0), 1, "btc", 1, USD(10)))))
	second := must(b.Record(ctx, must(NewTrade(at(1), 1, leg("BTC", 1, 12), leg("ETH", 4, 3)))))
	if first.ID != 1 || second.ID != 2 {
		t.Errorf("trade IDs = %d, %d, want 1, 2", first.ID, second.ID)
	}

	entries := must(b.ListLedgerEntries(ctx))
	if len(entries) != 3 {
		t.Fatalf("ListLedgerEntries() = %v, want 3 entries", entries)
	}
	for i, e := range entries {
		if e.ID != int64(i+1) {
			t.Errorf("entries[%d].ID = %d, want %d", i, e.ID, i+1)
		}
	}
	if entries[0].Symbol != "BTC" || entries[0].TradeID != 1 {
		t.Errorf("entries[0] = %+v, want BTC of trade 1", entries[0])
	}

	// Lists are copies.
	*entries[0].Price = 99
	if again := must(b.ListLedgerEntries(ctx)); *again[0].Price != 10 {
		t.Errorf("ListLedgerEntries() shares price pointers with the caller")
	}
}

func TestBook_RecordIsAtomic(t *testing.T) {
	ctx := context.Background()
	b := NewBook()
	bad := Draft{
		Trade:   Trade{Timestamp: at(0), Kind: KindTrade},
		Entries: []LedgerEntry{{Symbol: "BTC", Amount: -1}},
	}
	if _, err := b.Record(ctx, bad); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Record() error = %v, want ErrInvalid", err)
	}
	if trades := must(b.ListTrades(ctx)); len(trades) != 0 {
		t.Errorf("ListTrades() = %v after a failed Record, want none", trades)
	}
	if entries := must(b.ListLedgerEntries(ctx)); len(entries) != 0 {
		t.Errorf("ListLedgerEntries() = %v after a failed Record, want none", entries)
	}
}

func TestBook_DeleteTradeCascades(t *testing.T) {
	ctx := context.Background()
	b := NewBook()
	must(b.Record(ctx, must(NewDeposit(at(0), 1, "BTC", 1, nil))))
	tr := must(b.Record(ctx, must(NewTransfer(at(1), 1, 2, "BTC", 1))))

	if err := b.DeleteTrade(ctx, tr.ID); err != nil {
		t.Fatalf("DeleteTrade() error = %v", err)
	}
	if entries := must(b.ListLedgerEntries(ctx)); len(entries) != 1 {
		t.Errorf("ListLedgerEntries() = %v, want only the deposit", entries)
	}
	if err := b.DeleteTrade(ctx, tr.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTrade() twice error = %v, want ErrNotFound", err)
	}
}

func TestBook_Accounts(t *testing.T) {
	ctx := context.Background()
	b := NewBook()

	a := must(b.SaveAccount(ctx, Account{Name: "Kraken", Kind: "Exchange"}))
	if a.ID != 1 || a.Kind != AccountExchange {
		t.Errorf("SaveAccount() = %+v, want ID 1 of kind exchange", a)
	}
	a.Name = "Kraken Pro"
	must(b.SaveAccount(ctx, a))
	if got := must(b.ListAccounts(ctx)); len(got) != 1 || got[0].Name != "Kraken Pro" {
		t.Errorf("ListAccounts() = %v, want the renamed account", got)
	}
	if _, err := b.SaveAccount(ctx, Account{Name: "x", Kind: "piggy"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("SaveAccount(unknown kind) error = %v, want ErrInvalid", err)
	}
	if err := b.DeleteAccount(ctx, a.ID); err != nil {
		t.Errorf("DeleteAccount() error = %v", err)
	}
	if err := b.DeleteAccount(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteAccount() twice error = %v, want ErrNotFound", err)
	}
}

func TestBook_OverridesAndTargets(t *testing.T) {
	b := NewBook()
	if err := b.SetOverride("xyz", 1.5); err != nil {
		t.Fatalf("SetOverride() error = %v", err)
	}
	if err := b.SetOverride("XYZ", -1); !errors.Is(err, ErrInvalid) {
		t.Errorf("SetOverride(-1) error = %v, want ErrInvalid", err)
	}
	if got := b.Overrides()["XYZ"]; got != 1.5 {
		t.Errorf("Overrides()[XYZ] = %v, want 1.5", got)
	}
	b.ClearOverride("xyz")
	if len(b.Overrides()) != 0 {
		t.Errorf("Overrides() = %v after ClearOverride, want empty", b.Overrides())
	}

	must(0, b.SetTarget("ETH", 40))
	must(0, b.SetTarget("BTC", 60))
	if err := b.SetTarget("BTC", 101); !errors.Is(err, ErrInvalid) {
		t.Errorf("SetTarget(101) error = %v, want ErrInvalid", err)
	}
	want := []TargetAllocation{{"BTC", 60}, {"ETH", 40}}
	if d := diff(want, b.Targets()); d != "" {
		t.Errorf("Targets() mismatch (-want +got):\n%s", d)
	}
	must(0, b.SetTarget("ETH", 0))
	if len(b.Targets()) != 1 {
		t.Errorf("Targets() = %v, want ETH removed", b.Targets())
	}
}
