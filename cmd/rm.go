package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
)

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete trades and their entries" }
func (*rmCmd) Usage() string {
	return `cfl rm <trade id>...

  Deletes trades. Their ledger entries are deleted with them.
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (*rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: missing trade id")
		return subcommands.ExitUsageError
	}
	ids := make([]int64, 0, f.NArg())
	for _, arg := range f.Args() {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			fmt.Fprintf(os.Stderr, "Error: invalid trade id %q\n", arg)
			return subcommands.ExitUsageError
		}
		ids = append(ids, id)
	}

	return run(ctx, func(ctx context.Context, e *env, b book) error {
		for _, id := range ids {
			if err := b.DeleteTrade(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted trade #%d\n", id)
		}
		return b.Commit()
	})
}
