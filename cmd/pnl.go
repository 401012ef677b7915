package cmd

import (
	"context"
	"flag"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type pnlCmd struct{}

func (*pnlCmd) Name() string     { return "pnl" }
func (*pnlCmd) Synopsis() string { return "display the realized profit and loss of every sell" }
func (*pnlCmd) Usage() string {
	return `cfl pnl

  Displays the realized profit and loss of every sell, against the
  weighted-average cost of the sold asset at that time.
`
}

func (*pnlCmd) SetFlags(*flag.FlagSet) {}

func (*pnlCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, e *env, b book) error {
		entries, err := b.ListLedgerEntries(ctx)
		if err != nil {
			return err
		}
		trades, err := b.ListTrades(ctx)
		if err != nil {
			return err
		}
		printMarkdown(renderer.RenderGains(renderer.NewGains(coinfolio.RealizedGains(entries, trades))))
		return nil
	})
}
