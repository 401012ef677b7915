package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct {
	days int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the daily portfolio value" }
func (*historyCmd) Usage() string {
	return `cfl history [-days <n>]

  Displays the value of the portfolio at the end of each of the last n days,
  replaying the ledger as it stood on each day.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 0, "Number of trailing days, defaults to the configured window")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.days < 0 {
		fmt.Fprintln(os.Stderr, "Error: -days must not be negative")
		return subcommands.ExitUsageError
	}
	return run(ctx, func(ctx context.Context, e *env, b book) error {
		if c.days > 0 {
			e.cfg.Prices.Window = c.days
		}
		s, err := e.snapshot(ctx, b)
		if err != nil {
			return err
		}
		printMarkdown(renderer.RenderHistory(renderer.NewHistory(s.History)))
		return nil
	})
}
