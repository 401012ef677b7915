package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/google/subcommands"
)

type addCmd struct {
	at      string
	account int64
	to      int64
	note    string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a trade in the book" }
func (*addCmd) Usage() string {
	return `cfl add [-at <time>] [-account <id>] [-note <text>] <kind> <args>...

  Records a trade. Depending on the kind, args are:

    deposit|withdraw|gain|loss  <symbol> <quantity> [<usd price>]
    trade                       <sold leg> <received leg>
    buy|sell                    <pair> <pair price> <sold leg> <received leg>
    transfer                    <symbol> <quantity>   (from -account to -to)

  A leg is SYMBOL:QUANTITY[@USD_PRICE], e.g. BTC:0.5@60000.
  Time is RFC3339, "2006-01-02T15:04" or "2006-01-02" in local time, and
  defaults to now.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.at, "at", "", "Time of the trade, defaults to now")
	f.Int64Var(&c.account, "account", 0, "Account of the trade, the source account of a transfer")
	f.Int64Var(&c.to, "to", 0, "Destination account of a transfer")
	f.StringVar(&c.note, "note", "", "Free text note")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: missing trade kind")
		return subcommands.ExitUsageError
	}
	d, err := c.draft(f.Arg(0), f.Args()[1:], time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return run(ctx, func(ctx context.Context, e *env, b book) error {
		t, err := b.Record(ctx, d)
		if err != nil {
			return err
		}
		if err := b.Commit(); err != nil {
			return err
		}
		e.log.WithField("trade", t.ID).Debug("trade recorded")
		fmt.Printf("Recorded %s #%d on %s\n", t.Kind, t.ID, t.Timestamp.Format(time.RFC3339))
		return nil
	})
}

// draft builds the draft of a kind from its command line arguments.
func (c *addCmd) draft(kindArg string, args []string, now time.Time) (coinfolio.Draft, error) {
	kind, err := coinfolio.ParseTradeKind(kindArg)
	if err != nil {
		return coinfolio.Draft{}, err
	}
	at, err := parseTime(c.at, now)
	if err != nil {
		return coinfolio.Draft{}, err
	}

	d, err := c.build(kind, at, args)
	if err != nil {
		return coinfolio.Draft{}, err
	}
	d.Trade.Note = c.note
	return d, nil
}

func (c *addCmd) build(kind coinfolio.TradeKind, at time.Time, args []string) (coinfolio.Draft, error) {
	switch kind {
	case coinfolio.KindDeposit, coinfolio.KindWithdraw, coinfolio.KindGain, coinfolio.KindLoss:
		if len(args) < 2 || len(args) > 3 {
			return coinfolio.Draft{}, fmt.Errorf("%w: %s expects <symbol> <quantity> [<price>]", coinfolio.ErrInvalid, kind)
		}
		qty, err := parseNumber("quantity", args[1])
		if err != nil {
			return coinfolio.Draft{}, err
		}
		var price *float64
		if len(args) == 3 {
			p, err := parseNumber("price", args[2])
			if err != nil {
				return coinfolio.Draft{}, err
			}
			price = &p
		}
		switch kind {
		case coinfolio.KindDeposit:
			return coinfolio.NewDeposit(at, c.account, args[0], qty, price)
		case coinfolio.KindWithdraw:
			return coinfolio.NewWithdraw(at, c.account, args[0], qty, price)
		case coinfolio.KindGain:
			return coinfolio.NewGain(at, c.account, args[0], qty, price)
		default:
			return coinfolio.NewLoss(at, c.account, args[0], qty, price)
		}

	case coinfolio.KindTrade:
		if len(args) != 2 {
			return coinfolio.Draft{}, fmt.Errorf("%w: trade expects <sold leg> <received leg>", coinfolio.ErrInvalid)
		}
		sold, received, err := parseLegs(args[0], args[1])
		if err != nil {
			return coinfolio.Draft{}, err
		}
		return coinfolio.NewTrade(at, c.account, sold, received)

	case coinfolio.KindBuy, coinfolio.KindSell:
		if len(args) != 4 {
			return coinfolio.Draft{}, fmt.Errorf("%w: %s expects <pair> <pair price> <sold leg> <received leg>", coinfolio.ErrInvalid, kind)
		}
		pairPrice, err := parseNumber("pair price", args[1])
		if err != nil {
			return coinfolio.Draft{}, err
		}
		sold, received, err := parseLegs(args[2], args[3])
		if err != nil {
			return coinfolio.Draft{}, err
		}
		if kind == coinfolio.KindBuy {
			return coinfolio.NewBuy(at, c.account, args[0], pairPrice, sold, received)
		}
		return coinfolio.NewSell(at, c.account, args[0], pairPrice, sold, received)

	default: // transfer
		if len(args) != 2 {
			return coinfolio.Draft{}, fmt.Errorf("%w: transfer expects <symbol> <quantity>", coinfolio.ErrInvalid)
		}
		qty, err := parseNumber("quantity", args[1])
		if err != nil {
			return coinfolio.Draft{}, err
		}
		return coinfolio.NewTransfer(at, c.account, c.to, args[0], qty)
	}
}

// timeLayouts are the accepted -at layouts, tried in order.
var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// parseTime parses s in local time, an empty s is now.
func parseTime(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid time %q", coinfolio.ErrInvalid, s)
}

func parseNumber(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", coinfolio.ErrInvalid, name, s)
	}
	return v, nil
}

// parseLeg parses SYMBOL:QUANTITY[@PRICE].
func parseLeg(s string) (coinfolio.Leg, error) {
	var leg coinfolio.Leg
	body, price, hasPrice := strings.Cut(s, "@")
	sym, qty, ok := strings.Cut(body, ":")
	if !ok {
		return leg, fmt.Errorf("%w: leg %q is not SYMBOL:QUANTITY[@PRICE]", coinfolio.ErrInvalid, s)
	}
	amount, err := parseNumber("quantity", qty)
	if err != nil {
		return leg, err
	}
	leg.Symbol, leg.Amount = sym, amount
	if hasPrice {
		p, err := parseNumber("price", price)
		if err != nil {
			return leg, err
		}
		leg.Price = &p
	}
	return leg, nil
}

func parseLegs(sold, received string) (coinfolio.Leg, coinfolio.Leg, error) {
	s, err := parseLeg(sold)
	if err != nil {
		return s, coinfolio.Leg{}, err
	}
	r, err := parseLeg(received)
	return s, r, err
}
