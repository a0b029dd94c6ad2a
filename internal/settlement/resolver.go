package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTermsNotResolvable indicates the franchise does not exist, so no term
// set can be produced. Callers render this as "N/A" rather than failing the
// whole view.
var ErrTermsNotResolvable = errors.New("settlement: terms not resolvable")

// ResolveTerms selects the agreement in effect at asOf: the one with the
// latest effective date on or before asOf, ties broken by the most recently
// created row (highest id). When no agreement qualifies the franchise base
// terms apply. Share percentages default to the 60/40 split either way.
func ResolveTerms(base AgreementTerms, agreements []Agreement, asOf time.Time) AgreementTerms {
	var picked *Agreement
	for i := range agreements {
		a := &agreements[i]
		if a.EffectiveDate.After(asOf) {
			continue
		}
		if picked == nil ||
			a.EffectiveDate.After(picked.EffectiveDate) ||
			(a.EffectiveDate.Equal(picked.EffectiveDate) && a.ID > picked.ID) {
			picked = a
		}
	}
	if picked == nil {
		return base.withDefaults()
	}
	return picked.Terms.withDefaults()
}

// TermsSource is the data-access boundary the resolver reads from. The
// agreement list is fetched once per call so the selection observes a
// consistent snapshot.
type TermsSource interface {
	FranchiseBaseTerms(ctx context.Context, franchiseID int64) (AgreementTerms, error)
	AgreementsByFranchise(ctx context.Context, franchiseID int64) ([]Agreement, error)
}

// Resolver resolves effective terms for a franchise against the store.
type Resolver struct {
	src TermsSource
}

// NewResolver constructs a Resolver.
func NewResolver(src TermsSource) *Resolver {
	return &Resolver{src: src}
}

// Resolve returns the term set in effect for franchiseID at asOf.
func (r *Resolver) Resolve(ctx context.Context, franchiseID int64, asOf time.Time) (AgreementTerms, error) {
	base, err := r.src.FranchiseBaseTerms(ctx, franchiseID)
	if err != nil {
		return AgreementTerms{}, fmt.Errorf("%w: franchise %d: %w", ErrTermsNotResolvable, franchiseID, err)
	}
	agreements, err := r.src.AgreementsByFranchise(ctx, franchiseID)
	if err != nil {
		return AgreementTerms{}, fmt.Errorf("settlement: load agreements for franchise %d: %w", franchiseID, err)
	}
	return ResolveTerms(base, agreements, asOf), nil
}
