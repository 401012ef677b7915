package cmd

import (
	"context"
	"flag"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type balancesCmd struct{}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "display asset quantities per account" }
func (*balancesCmd) Usage() string {
	return `cfl balances

  Displays the quantity and value of every asset in every account.
  Transfers move assets between accounts.
`
}

func (*balancesCmd) SetFlags(*flag.FlagSet) {}

func (*balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, e *env, b book) error {
		s, err := e.snapshot(ctx, b)
		if err != nil {
			return err
		}
		entries, err := b.ListLedgerEntries(ctx)
		if err != nil {
			return err
		}
		trades, err := b.ListTrades(ctx)
		if err != nil {
			return err
		}
		accounts, err := b.ListAccounts(ctx)
		if err != nil {
			return err
		}
		balances := coinfolio.AccountBalances(entries, trades, accounts)
		printMarkdown(renderer.RenderBalances(renderer.NewBalances(balances, s.Prices)))
		return nil
	})
}
