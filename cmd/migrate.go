package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/coinfolio/sqlite"
	"github.com/google/subcommands"
)

type migrateCmd struct {
	to string
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "copy the book into a sqlite database" }
func (*migrateCmd) Usage() string {
	return `cfl migrate -to <file.db>

  Copies every account, trade, price override and target of the book into
  a new sqlite database. Trade and account ids are renumbered.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.to, "to", "", "Path of the sqlite database to create")
}

func (c *migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.to == "" {
		fmt.Fprintln(os.Stderr, "Error: -to is required")
		return subcommands.ExitUsageError
	}
	if _, err := os.Stat(c.to); err == nil {
		fmt.Fprintf(os.Stderr, "Error: %s already exists\n", c.to)
		return subcommands.ExitFailure
	}

	return run(ctx, func(ctx context.Context, e *env, b book) error {
		dst, err := sqlite.Open(c.to)
		if err != nil {
			return err
		}
		defer dst.Close()

		if err := dst.Import(ctx, b); err != nil {
			return err
		}
		overrides, err := b.Overrides(ctx)
		if err != nil {
			return err
		}
		for sym, price := range overrides {
			if err := dst.SetOverride(ctx, sym, price); err != nil {
				return err
			}
		}
		targets, err := b.Targets(ctx)
		if err != nil {
			return err
		}
		for _, t := range targets {
			if err := dst.SetTarget(ctx, t.Symbol, t.Percent); err != nil {
				return err
			}
		}
		e.log.WithField("to", c.to).Info("book migrated")
		fmt.Printf("Migrated %s to %s\n", e.cfg.Book.Path, c.to)
		return nil
	})
}
