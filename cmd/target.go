package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type targetCmd struct{}

func (*targetCmd) Name() string     { return "target" }
func (*targetCmd) Synopsis() string { return "set the target allocation of an asset" }
func (*targetCmd) Usage() string {
	return `cfl target <symbol> <percent>

  Sets the share of the portfolio value that should be held in the asset.
  A percent of 0 removes the target. See cfl allocation.
`
}

func (*targetCmd) SetFlags(*flag.FlagSet) {}

func (*targetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expects <symbol> <percent>")
		return subcommands.ExitUsageError
	}
	percent, err := parseNumber("percent", f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return run(ctx, func(ctx context.Context, e *env, b book) error {
		if err := b.SetTarget(ctx, f.Arg(0), percent); err != nil {
			return err
		}
		targets, err := b.Targets(ctx)
		if err != nil {
			return err
		}
		total := 0.0
		for _, t := range targets {
			total += t.Percent
		}
		if total > 100 {
			e.log.Warnf("targets add up to %.2f%%", total)
		}
		return b.Commit()
	})
}
