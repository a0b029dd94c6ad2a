package settlement

import (
	"context"
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestResolveTermsMonotonic(t *testing.T) {
	base := AgreementTerms{CoinPrice: 3}
	agreements := []Agreement{
		{ID: 1, FranchiseID: 9, EffectiveDate: date("2024-01-01"), Terms: AgreementTerms{CoinPrice: 5}},
		{ID: 2, FranchiseID: 9, EffectiveDate: date("2024-06-01"), Terms: AgreementTerms{CoinPrice: 7}},
	}

	cases := []struct {
		name string
		asOf string
		want float64
	}{
		{"before first falls back to base", "2023-12-31", 3},
		{"on first boundary", "2024-01-01", 5},
		{"between agreements", "2024-05-31", 5},
		{"on second boundary", "2024-06-01", 7},
		{"after second", "2025-01-01", 7},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTerms(base, agreements, date(tt.asOf))
			if got.CoinPrice != tt.want {
				t.Fatalf("coin_price = %v, want %v", got.CoinPrice, tt.want)
			}
		})
	}
}

func TestResolveTermsTieBreaksOnNewestRow(t *testing.T) {
	agreements := []Agreement{
		{ID: 4, EffectiveDate: date("2024-03-01"), Terms: AgreementTerms{CoinPrice: 5}},
		{ID: 9, EffectiveDate: date("2024-03-01"), Terms: AgreementTerms{CoinPrice: 6}},
	}
	got := ResolveTerms(AgreementTerms{}, agreements, date("2024-04-01"))
	if got.CoinPrice != 6 {
		t.Fatalf("coin_price = %v, want the most recently created agreement to win", got.CoinPrice)
	}
}

func TestResolveTermsDefaultsShares(t *testing.T) {
	got := ResolveTerms(AgreementTerms{CoinPrice: 5}, nil, date("2024-01-01"))
	if got.FranchiseShare != DefaultFranchiseShare || got.CloweeShare != DefaultCloweeShare {
		t.Fatalf("shares = %v/%v, want %v/%v", got.FranchiseShare, got.CloweeShare, DefaultFranchiseShare, DefaultCloweeShare)
	}
}

type fakeTermsSource struct {
	base       AgreementTerms
	baseErr    error
	agreements []Agreement
	agrErr     error
}

func (f *fakeTermsSource) FranchiseBaseTerms(ctx context.Context, franchiseID int64) (AgreementTerms, error) {
	return f.base, f.baseErr
}

func (f *fakeTermsSource) AgreementsByFranchise(ctx context.Context, franchiseID int64) ([]Agreement, error) {
	return append([]Agreement(nil), f.agreements...), f.agrErr
}

func TestResolverMissingFranchise(t *testing.T) {
	cause := errors.New("no rows")
	r := NewResolver(&fakeTermsSource{baseErr: cause})
	_, err := r.Resolve(context.Background(), 42, date("2024-01-01"))
	if !errors.Is(err, ErrTermsNotResolvable) {
		t.Fatalf("expected ErrTermsNotResolvable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("underlying cause lost from %v", err)
	}
}

func TestResolverPicksEffectiveAgreement(t *testing.T) {
	r := NewResolver(&fakeTermsSource{
		base: AgreementTerms{CoinPrice: 3},
		agreements: []Agreement{
			{ID: 1, EffectiveDate: date("2024-02-01"), Terms: AgreementTerms{CoinPrice: 8}},
		},
	})
	got, err := r.Resolve(context.Background(), 42, date("2024-03-01"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.CoinPrice != 8 {
		t.Fatalf("coin_price = %v, want 8", got.CoinPrice)
	}
}
