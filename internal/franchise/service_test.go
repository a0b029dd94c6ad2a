package franchise

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

type fakeStore struct {
	franchises map[int64]*Franchise
	agreements map[int64][]AgreementRow
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		franchises: make(map[int64]*Franchise),
		agreements: make(map[int64][]AgreementRow),
		nextID:     1,
	}
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*Franchise, error) {
	fr, ok := f.franchises[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *fr
	return &cp, nil
}

func (f *fakeStore) List(ctx context.Context, req ListFranchisesRequest) ([]Franchise, int, error) {
	var out []Franchise
	for _, fr := range f.franchises {
		out = append(out, *fr)
	}
	return out, len(out), nil
}

func (f *fakeStore) Create(ctx context.Context, fr Franchise) (int64, error) {
	id := f.nextID
	f.nextID++
	fr.ID = id
	f.franchises[id] = &fr
	return id, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, updates map[string]any) error {
	fr, ok := f.franchises[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["coin_price"]; ok {
		fr.CoinPrice = v.(float64)
	}
	if v, ok := updates["is_active"]; ok {
		fr.IsActive = v.(bool)
	}
	return nil
}

func (f *fakeStore) AppendAgreement(ctx context.Context, a AgreementRow) (int64, error) {
	id := f.nextID
	f.nextID++
	a.ID = id
	f.agreements[a.FranchiseID] = append(f.agreements[a.FranchiseID], a)
	return id, nil
}

func (f *fakeStore) ListAgreements(ctx context.Context, franchiseID int64) ([]AgreementRow, error) {
	return append([]AgreementRow(nil), f.agreements[franchiseID]...), nil
}

func (f *fakeStore) FranchiseBaseTerms(ctx context.Context, franchiseID int64) (settlement.AgreementTerms, error) {
	fr, err := f.Get(ctx, franchiseID)
	if err != nil {
		return settlement.AgreementTerms{}, err
	}
	return fr.BaseTerms(), nil
}

func (f *fakeStore) AgreementsByFranchise(ctx context.Context, franchiseID int64) ([]settlement.Agreement, error) {
	rows, _ := f.ListAgreements(ctx, franchiseID)
	out := make([]settlement.Agreement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Agreement())
	}
	return out, nil
}

func TestServiceAppendAgreementIsAppendOnly(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)

	created, err := svc.Create(context.Background(), CreateFranchiseRequest{
		Name:            "Dhaka Mall",
		CoinPrice:       5,
		DollPrice:       20,
		PaymentDuration: PaymentMonthly,
	}, 1)
	require.NoError(t, err)

	_, err = svc.AppendAgreement(context.Background(), created.ID, AppendAgreementRequest{
		EffectiveDate: "2024-01-01",
		CoinPrice:     6,
		DollPrice:     22,
	}, 1)
	require.NoError(t, err)

	_, err = svc.AppendAgreement(context.Background(), created.ID, AppendAgreementRequest{
		EffectiveDate: "2024-06-01",
		CoinPrice:     7,
		DollPrice:     25,
	}, 1)
	require.NoError(t, err)

	rows, err := svc.ListAgreements(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2, "corrections must append, never replace")
}

func TestServiceResolveTermsUsesAgreementHistory(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)

	created, err := svc.Create(context.Background(), CreateFranchiseRequest{
		Name:            "Chittagong Plaza",
		CoinPrice:       5,
		DollPrice:       20,
		PaymentDuration: PaymentHalfMonthly,
	}, 1)
	require.NoError(t, err)

	_, err = svc.AppendAgreement(context.Background(), created.ID, AppendAgreementRequest{
		EffectiveDate: "2024-03-01",
		CoinPrice:     10,
		DollPrice:     30,
	}, 1)
	require.NoError(t, err)

	before, err := svc.ResolveTerms(context.Background(), created.ID, mustDate(t, "2024-02-15"))
	require.NoError(t, err)
	require.Equal(t, 5.0, before.CoinPrice, "before the agreement the base terms apply")

	after, err := svc.ResolveTerms(context.Background(), created.ID, mustDate(t, "2024-03-15"))
	require.NoError(t, err)
	require.Equal(t, 10.0, after.CoinPrice)
	require.Equal(t, settlement.DefaultFranchiseShare, after.FranchiseShare)
	require.Equal(t, settlement.DefaultCloweeShare, after.CloweeShare)
}

func TestServiceResolveTermsMissingFranchise(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	_, err := svc.ResolveTerms(context.Background(), 99, time.Now())
	require.ErrorIs(t, err, settlement.ErrTermsNotResolvable)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(settlement.DateLayout, s)
	require.NoError(t, err)
	return d
}
