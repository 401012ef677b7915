package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/livefeed"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type watchCmd struct {
	every time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "display holdings again on every live price change" }
func (*watchCmd) Usage() string {
	return `cfl watch [-every <duration>]

  Streams live prices and recomputes the portfolio when they change, at
  most once per -every. Only the latest computation is displayed, slower
  ones that finish late are discarded. Stops on interrupt.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.every, "every", 10*time.Second, "Minimum delay between two recomputes")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.every <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -every must be positive")
		return subcommands.ExitUsageError
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, func(ctx context.Context, e *env, b book) error {
		in, err := e.readInputs(ctx, b)
		if err != nil {
			return err
		}
		feed := livefeed.New(e.log)
		feed.SetOverrides(in.Overrides)
		ticks := feed.Subscribe()
		if !e.feedLive(ctx, feed, coinfolio.QuotedSymbols(in.Entries, e.stable())) {
			e.log.Warn("no live price source, holdings are valued with closes only")
		}

		tr := e.tracker()
		snapshots := tr.Subscribe()
		recompute := func() {
			in.Live, in.Overrides = feed.Prices(), feed.Overrides()
			go func(gen uint64, in coinfolio.Inputs) {
				tr.Recompute(ctx, gen, in)
			}(tr.Next(), in)
		}
		recompute()

		throttle := time.NewTicker(c.every)
		defer throttle.Stop()
		pending := false
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticks:
				pending = true
			case <-throttle.C:
				if pending {
					pending = false
					recompute()
				}
			case s := <-snapshots:
				view := renderer.NewHolding(s)
				view.HideAnomalies = s.Generation > 1
				printMarkdown(renderer.RenderHolding(view))
			}
		}
	})
}
