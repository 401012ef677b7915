package renderer

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the reporting currency of every amount.
const Currency = money.USD

// Money is a USD amount with a markdown friendly representation.
type Money float64

// String formats m with the currency symbol and grouped thousands, rounded to the cent.
func (m Money) String() string {
	cur := money.GetCurrency(Currency)
	cents := decimal.NewFromFloat(float64(m)).Shift(int32(cur.Fraction)).Round(0)
	return money.New(cents.IntPart(), Currency).Display()
}

// Signed returns m with an explicit sign. Zero is rendered as "-".
func (m Money) Signed() string {
	switch {
	case m.IsZero():
		return "-"
	case m > 0:
		return "+" + m.String()
	default:
		return m.String()
	}
}

// IsZero reports whether m rounds to zero cents.
func (m Money) IsZero() bool { return math.Abs(float64(m)) < 0.005 }

// Price is a unit price. Prices under one dollar keep their significant digits.
type Price float64

func (p Price) String() string {
	if p == 0 {
		return "-"
	}
	if math.Abs(float64(p)) >= 1 {
		return Money(p).String()
	}
	return "$" + decimal.NewFromFloat(float64(p)).Round(8).String()
}

// Quantity is an asset amount.
type Quantity float64

func (q Quantity) String() string {
	return decimal.NewFromFloat(float64(q)).Round(8).String()
}

// Percent is a share expressed in percent.
type Percent float64

func (p Percent) String() string {
	return decimal.NewFromFloat(float64(p)).StringFixed(2) + "%"
}

// Signed returns p with an explicit sign. Zero is rendered as "-".
func (p Percent) Signed() string {
	r := decimal.NewFromFloat(float64(p)).Round(2)
	switch {
	case r.IsZero():
		return "-"
	case r.IsPositive():
		return "+" + p.String()
	default:
		return p.String()
	}
}
