// Command cfl tracks a crypto portfolio: holdings, realized profit and loss
// and value history.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/coinfolio/cmd"
	"github.com/google/subcommands"
)

func main() {
	// Completes the command line and exits when invoked by the shell.
	cmd.Completion().Complete("cfl")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		if cmd.Name() == name {
			found = true
		}
	})
	return found
}
