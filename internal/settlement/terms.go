// Package settlement implements the profit-sharing calculation core:
// agreement term resolution, settlement math, payment reconciliation and
// franchise-level consolidation. Every function in this package is pure and
// performs no I/O; callers fetch the rows and render the results.
package settlement

import (
	"math"
	"time"
)

// Default share split applied when an agreement or franchise record carries
// no explicit percentages.
const (
	DefaultFranchiseShare = 60.0
	DefaultCloweeShare    = 40.0
)

// AgreementTerms is the effective pricing and sharing term set for one
// franchise at one point in time.
type AgreementTerms struct {
	CoinPrice             float64 `json:"coin_price"`
	DollPrice             float64 `json:"doll_price"`
	VATPercentage         float64 `json:"vat_percentage"`
	FranchiseShare        float64 `json:"franchise_share"`
	CloweeShare           float64 `json:"clowee_share"`
	ElectricityCost       float64 `json:"electricity_cost"`
	MaintenancePercentage float64 `json:"maintenance_percentage"`
}

// Agreement is one immutable row of the append-only agreement log.
type Agreement struct {
	ID            int64          `json:"id"`
	FranchiseID   int64          `json:"franchise_id"`
	EffectiveDate time.Time      `json:"effective_date"`
	Terms         AgreementTerms `json:"terms"`
}

// withDefaults fills absent share percentages with the 60/40 split. Zero is
// treated as absent; historical rows never carry an explicit zero share.
func (t AgreementTerms) withDefaults() AgreementTerms {
	if t.FranchiseShare == 0 {
		t.FranchiseShare = DefaultFranchiseShare
	}
	if t.CloweeShare == 0 {
		t.CloweeShare = DefaultCloweeShare
	}
	return t
}

// num coerces non-finite values to zero so that incomplete historical rows
// flow through the arithmetic instead of poisoning it.
func num(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
