package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/coinfolio"
	"github.com/google/subcommands"
)

type accountCmd struct {
	add    string
	kind   string
	rename int64
	rm     int64
}

func (*accountCmd) Name() string     { return "account" }
func (*accountCmd) Synopsis() string { return "list, add, rename or delete accounts" }
func (*accountCmd) Usage() string {
	return `cfl account [-add <name> [-kind <kind>] | -rename <id> -add <name> | -rm <id>]

  Without flags, lists the accounts. Kinds are wallet, bank, exchange,
  custody or other. Entries of a deleted account are reported under
  "no account".
`
}

func (c *accountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.add, "add", "", "Name of the account to add")
	f.StringVar(&c.kind, "kind", string(coinfolio.AccountOther), "Kind of the added account")
	f.Int64Var(&c.rename, "rename", 0, "Id of the account to rename to the -add name")
	f.Int64Var(&c.rm, "rm", 0, "Id of the account to delete")
}

func (c *accountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.rm != 0 && c.add != "" {
		fmt.Fprintln(os.Stderr, "Error: -rm cannot be used with -add")
		return subcommands.ExitUsageError
	}
	if c.rename != 0 && c.add == "" {
		fmt.Fprintln(os.Stderr, "Error: -rename needs the new name in -add")
		return subcommands.ExitUsageError
	}

	return run(ctx, func(ctx context.Context, e *env, b book) error {
		switch {
		case c.rm != 0:
			if err := b.DeleteAccount(ctx, c.rm); err != nil {
				return err
			}
			fmt.Printf("Deleted account #%d\n", c.rm)
			return b.Commit()

		case c.add != "":
			a, err := b.SaveAccount(ctx, coinfolio.Account{ID: c.rename, Name: c.add, Kind: coinfolio.AccountKind(c.kind)})
			if err != nil {
				return err
			}
			fmt.Printf("Saved account #%d %q (%s)\n", a.ID, a.Name, a.Kind)
			return b.Commit()
		}

		accounts, err := b.ListAccounts(ctx)
		if err != nil {
			return err
		}
		var md strings.Builder
		md.WriteString("# Accounts\n\n| Id | Name | Kind |\n|---:|:---|:---|\n")
		for _, a := range accounts {
			fmt.Fprintf(&md, "| %d | %s | %s |\n", a.ID, a.Name, a.Kind)
		}
		printMarkdown(md.String())
		return nil
	})
}
