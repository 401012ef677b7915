package cmd

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type overrideCmd struct {
	clear bool
}

func (*overrideCmd) Name() string     { return "override" }
func (*overrideCmd) Synopsis() string { return "set or clear a manual USD price" }
func (*overrideCmd) Usage() string {
	return `cfl override [-clear] [<symbol> [<price>]]

  Sets the USD price of an asset regardless of the date, for assets no
  provider knows. Without arguments, lists the overrides.
`
}

func (c *overrideCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.clear, "clear", false, "Remove the override of the symbol")
}

func (c *overrideCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch {
	case c.clear && f.NArg() != 1:
		fmt.Fprintln(os.Stderr, "Error: -clear expects exactly one symbol")
		return subcommands.ExitUsageError
	case !c.clear && f.NArg() == 1, f.NArg() > 2:
		fmt.Fprintln(os.Stderr, "Error: expects <symbol> <price>")
		return subcommands.ExitUsageError
	}

	return run(ctx, func(ctx context.Context, e *env, b book) error {
		switch {
		case c.clear:
			if err := b.ClearOverride(ctx, f.Arg(0)); err != nil {
				return err
			}
			return b.Commit()
		case f.NArg() == 2:
			price, err := parseNumber("price", f.Arg(1))
			if err != nil {
				return err
			}
			if err := b.SetOverride(ctx, f.Arg(0), price); err != nil {
				return err
			}
			return b.Commit()
		}

		overrides, err := b.Overrides(ctx)
		if err != nil {
			return err
		}
		var md strings.Builder
		md.WriteString("# Price Overrides\n\n| Asset | Price |\n|:---|---:|\n")
		for _, sym := range slices.Sorted(maps.Keys(overrides)) {
			fmt.Fprintf(&md, "| %s | %s |\n", sym, renderer.Price(overrides[sym]))
		}
		printMarkdown(md.String())
		return nil
	})
}
