package coinfolio

import (
	"cmp"
	"slices"
)

// TargetAllocation is the desired share of the portfolio value held in Symbol, in percent.
type TargetAllocation struct {
	Symbol  string
	Percent float64
}

// Drift compares the current weight of an asset with its target.
type Drift struct {
	Symbol  string
	Value   float64
	Current float64 // percent of the total value
	Target  float64 // percent, 0 when the asset has no target
	Delta   float64 // Current - Target
}

// AllocationDrift returns one Drift per held or targeted symbol, sorted by symbol.
// Weights are zero when the portfolio has no value.
func AllocationDrift(holdings []Holding, values map[string]float64, targets []TargetAllocation) []Drift {
	bySymbol := make(map[string]*Drift)
	total := 0.0
	for _, h := range holdings {
		v := values[h.Symbol]
		total += v
		bySymbol[h.Symbol] = &Drift{Symbol: h.Symbol, Value: v}
	}
	for _, t := range targets {
		sym := NormalizeSymbol(t.Symbol)
		d, ok := bySymbol[sym]
		if !ok {
			d = &Drift{Symbol: sym}
			bySymbol[sym] = d
		}
		d.Target = t.Percent
	}
	out := make([]Drift, 0, len(bySymbol))
	for _, d := range bySymbol {
		if total > 0 {
			d.Current = d.Value / total * 100
		}
		d.Delta = d.Current - d.Target
		out = append(out, *d)
	}
	slices.SortFunc(out, func(a, b Drift) int { return cmp.Compare(a.Symbol, b.Symbol) })
	return out
}
