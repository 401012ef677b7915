package cmd

import (
	"context"
	"flag"

	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type holdingsCmd struct {
	hideAnomalies bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display current holdings with their cost basis and value" }
func (*holdingsCmd) Usage() string {
	return `cfl holdings [-q]

  Displays every asset held, its weighted-average cost, its current price
  and where the price comes from, and the ledger anomalies met on the way.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.hideAnomalies, "q", false, "Do not list ledger anomalies")
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, e *env, b book) error {
		s, err := e.snapshot(ctx, b)
		if err != nil {
			return err
		}
		view := renderer.NewHolding(s)
		view.HideAnomalies = c.hideAnomalies
		printMarkdown(renderer.RenderHolding(view))
		return nil
	})
}
