package coinfolio

import (
	"cmp"
	"slices"
)

// NoAccount is the name balances of entries without a known account are reported under.
const NoAccount = "no account"

// AccountBalance is the quantity of one asset held in one account.
type AccountBalance struct {
	AccountID int64
	Account   string
	Symbol    string
	Amount    float64
}

// AccountBalances sums entry amounts per (account, symbol). Unlike holdings,
// transfers are included since they move assets between accounts. Entries of
// unknown trades are skipped, entries of unknown accounts are grouped under
// NoAccount with AccountID 0. Dust balances are dropped.
func AccountBalances(entries []LedgerEntry, trades []Trade, accounts []Account) []AccountBalance {
	byID := indexTrades(trades)
	names := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	type key struct {
		account int64
		symbol  string
	}
	sums := make(map[key]float64)
	for _, e := range entries {
		if _, ok := byID[e.TradeID]; !ok || !finite(e.Amount) {
			continue
		}
		account := e.AccountID
		if _, ok := names[account]; !ok {
			account = 0
		}
		sums[key{account, NormalizeSymbol(e.Symbol)}] += e.Amount
	}

	out := make([]AccountBalance, 0, len(sums))
	for k, amount := range sums {
		if amount > -Dust && amount < Dust {
			continue
		}
		name, ok := names[k.account]
		if !ok {
			name = NoAccount
		}
		out = append(out, AccountBalance{AccountID: k.account, Account: name, Symbol: k.symbol, Amount: amount})
	}
	slices.SortFunc(out, func(a, b AccountBalance) int {
		if c := cmp.Compare(a.Account, b.Account); c != 0 {
			return c
		}
		if c := cmp.Compare(a.AccountID, b.AccountID); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
	return out
}
