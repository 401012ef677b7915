// Package cmd implements the cfl command line to track a crypto portfolio.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/config"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", defaultConfigFile(), "Path to the TOML configuration file")
	bookFile   = flag.String("book", "", "Path to the book, overrides the configuration. A .db or .sqlite file uses the sqlite driver")
	// Verbose enables debug logs.
	Verbose = flag.Bool("v", false, "Verbose logging")
	rawMD   = flag.Bool("raw", false, "Print raw markdown instead of rendering it for the terminal")
)

type group struct {
	name     string
	commands []subcommands.Command
}

var groups = []group{
	{"reports", []subcommands.Command{&holdingsCmd{}, &historyCmd{}, &pnlCmd{}, &balancesCmd{}, &allocationCmd{}, &watchCmd{}}},
	{"book", []subcommands.Command{&addCmd{}, &rmCmd{}, &accountCmd{}, &overrideCmd{}, &targetCmd{}, &migrateCmd{}}},
	{"help", []subcommands.Command{&topicCmd{}}},
}

// Register the subcommands.
func Register(c *subcommands.Commander) {
	for _, g := range groups {
		for _, cmd := range g.commands {
			c.Register(cmd, g.name)
		}
	}
}

func defaultConfigFile() string {
	if v := os.Getenv(EnvConfig); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "coinfolio.toml"
	}
	return filepath.Join(home, ".coinfolio", "config.toml")
}

// env is the configuration and logger shared by a command run.
type env struct {
	cfg *config.Config
	log *logrus.Logger
}

// loadEnv loads the configuration and applies the global flags.
func loadEnv() (*env, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *bookFile != "" {
		cfg.Book.Path = *bookFile
		switch filepath.Ext(*bookFile) {
		case ".db", ".sqlite":
			cfg.Book.Driver = "sqlite"
		default:
			cfg.Book.Driver = "jsonl"
		}
	}
	verbose := *Verbose || os.Getenv(EnvVerbose) == "true"
	log := cfg.Logging.NewLogger(os.Stderr, verbose)
	log.WithFields(logrus.Fields{"book": cfg.Book.Path, "driver": cfg.Book.Driver}).Debug("configuration loaded")
	return &env{cfg: cfg, log: log}, nil
}

// run is the common prologue of commands: it loads the environment, opens
// the book and hands both over to f. The book is closed afterwards.
func run(ctx context.Context, f func(ctx context.Context, e *env, b book) error) subcommands.ExitStatus {
	e, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	b, err := e.openBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	if err := f(ctx, e, b); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, coinfolio.ErrInvalid) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, or prints it raw when stdout is
// not a terminal.
func printMarkdown(md string) {
	if *rawMD || !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
