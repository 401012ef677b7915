package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion description of cfl, built from the
// registered subcommands and their flags.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, g := range groups {
		for _, c := range g.commands {
			fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(fs)
			sub := &complete.Command{Flags: flagPredictors(fs)}
			switch c.Name() {
			case "topic":
				sub.Args = predict.Set(append(docs.AllTopics(), "*"))
			case "add":
				kinds := make(predict.Set, len(coinfolio.TradeKinds))
				for i, k := range coinfolio.TradeKinds {
					kinds[i] = string(k)
				}
				sub.Args = kinds
			}
			root.Sub[c.Name()] = sub
		}
	}
	return root
}

// flagPredictors predicts file names for path flags, nothing for boolean
// flags and any value for the others.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		switch {
		case isBool(f):
			flags[f.Name] = predict.Nothing
		case f.Name == "config":
			flags[f.Name] = predict.Files("*.toml")
		case f.Name == "book", f.Name == "to" && strings.Contains(f.Usage, "sqlite"):
			flags[f.Name] = predict.Files("*")
		case f.Name == "kind":
			flags[f.Name] = predict.Set{
				string(coinfolio.AccountWallet), string(coinfolio.AccountBank), string(coinfolio.AccountExchange),
				string(coinfolio.AccountCustody), string(coinfolio.AccountOther),
			}
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
