package cmd

import (
	"context"
	"flag"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type allocationCmd struct{}

func (*allocationCmd) Name() string     { return "allocation" }
func (*allocationCmd) Synopsis() string { return "compare current weights with target allocations" }
func (*allocationCmd) Usage() string {
	return `cfl allocation

  Displays the share of the portfolio value held in each asset, its target
  (see cfl target) and the drift between both.
`
}

func (*allocationCmd) SetFlags(*flag.FlagSet) {}

func (*allocationCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, e *env, b book) error {
		s, err := e.snapshot(ctx, b)
		if err != nil {
			return err
		}
		targets, err := b.Targets(ctx)
		if err != nil {
			return err
		}
		drifts := coinfolio.AllocationDrift(s.Holdings, s.Values, targets)
		printMarkdown(renderer.RenderAllocation(renderer.NewAllocation(drifts)))
		return nil
	})
}
