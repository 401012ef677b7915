package coinfolio

import "fmt"

// AnomalyKind names a data-integrity condition found while replaying the ledger.
type AnomalyKind string

const (
	// AnomalyOrphanEntry is an entry whose trade does not exist anymore.
	AnomalyOrphanEntry AnomalyKind = "orphan-entry"
	// AnomalyInvalidEntry is an entry with a NaN, infinite or zero amount.
	AnomalyInvalidEntry AnomalyKind = "invalid-entry"
	// AnomalyOversell is an outflow larger than the quantity held at that point.
	AnomalyOversell AnomalyKind = "oversell"
	// AnomalyMissingLeg is a sell without both of its legs.
	AnomalyMissingLeg AnomalyKind = "missing-leg"
	// AnomalyMissingPrice is a sell whose sold leg has no price snapshot.
	AnomalyMissingPrice AnomalyKind = "missing-price"
)

// Anomaly records a ledger inconsistency that was excluded or clamped rather
// than raised. The ledger is user editable, partial states are expected.
type Anomaly struct {
	Kind    AnomalyKind
	TradeID int64
	EntryID int64
	Symbol  string
	Detail  string
}

func (a Anomaly) String() string {
	s := fmt.Sprintf("%s trade=%d", a.Kind, a.TradeID)
	if a.EntryID != 0 {
		s += fmt.Sprintf(" entry=%d", a.EntryID)
	}
	if a.Symbol != "" {
		s += " " + a.Symbol
	}
	if a.Detail != "" {
		s += ": " + a.Detail
	}
	return s
}
