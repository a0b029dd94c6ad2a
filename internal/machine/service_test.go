package machine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

type fakeStore struct {
	machines map[int64]*Machine
	readings map[int64][]CounterReading
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		machines: make(map[int64]*Machine),
		readings: make(map[int64][]CounterReading),
		nextID:   1,
	}
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*Machine, error) {
	m, ok := f.machines[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStore) ListByFranchise(ctx context.Context, franchiseID int64, activeOnly bool) ([]Machine, error) {
	var out []Machine
	for _, m := range f.machines {
		if m.FranchiseID != franchiseID {
			continue
		}
		if activeOnly && !m.IsActive {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, m Machine) (int64, error) {
	id := f.nextID
	f.nextID++
	m.ID = id
	f.machines[id] = &m
	return id, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, updates map[string]any) error {
	m, ok := f.machines[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["is_active"]; ok {
		m.IsActive = v.(bool)
	}
	if v, ok := updates["name"]; ok {
		m.Name = v.(string)
	}
	return nil
}

func (f *fakeStore) AddReading(ctx context.Context, reading CounterReading) (int64, error) {
	id := f.nextID
	f.nextID++
	reading.ID = id
	f.readings[reading.MachineID] = append(f.readings[reading.MachineID], reading)
	return id, nil
}

func (f *fakeStore) ListReadings(ctx context.Context, machineID int64) ([]CounterReading, error) {
	return append([]CounterReading(nil), f.readings[machineID]...), nil
}

func (f *fakeStore) LatestReading(ctx context.Context, machineID int64) (*CounterReading, error) {
	rs := f.readings[machineID]
	if len(rs) == 0 {
		return nil, ErrNotFound
	}
	cp := rs[len(rs)-1]
	return &cp, nil
}

type fixedTerms struct {
	terms settlement.AgreementTerms
}

func (f fixedTerms) ResolveTerms(ctx context.Context, franchiseID int64, asOf time.Time) (settlement.AgreementTerms, error) {
	return f.terms, nil
}

func standardTerms() settlement.AgreementTerms {
	return settlement.AgreementTerms{
		CoinPrice:             5,
		DollPrice:             20,
		VATPercentage:         10,
		ElectricityCost:       500,
		FranchiseShare:        60,
		CloweeShare:           40,
		MaintenancePercentage: 5,
	}
}

func seedMachine(t *testing.T, store *fakeStore) int64 {
	t.Helper()
	id, err := store.Create(context.Background(), Machine{
		FranchiseID:         1,
		Name:                "Claw A",
		Number:              "M-001",
		InstallationDate:    mustDate(t, "2024-01-01"),
		InitialCoinCounter:  1000,
		InitialPrizeCounter: 50,
		IsActive:            true,
	})
	require.NoError(t, err)
	return id
}

func TestAddReadingFirstDeltaUsesInitialCounters(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fixedTerms{terms: standardTerms()})
	id := seedMachine(t, store)

	delta, err := svc.AddReading(context.Background(), id, AddReadingRequest{
		ReadingDate:  "2024-02-01",
		CoinCounter:  2000,
		PrizeCounter: 100,
	}, 7)
	require.NoError(t, err)

	require.True(t, delta.Previous.Synthetic, "first delta baselines on the install counters")
	require.Equal(t, 1000.0, delta.CoinSales)
	require.Equal(t, 50.0, delta.PrizeOut)
	require.Equal(t, 5000.0, delta.Settlement.SalesAmount)
	require.Equal(t, 1000.0, delta.Settlement.PrizeCost)
}

func TestAddReadingRejectsBackwardsCounter(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fixedTerms{terms: standardTerms()})
	id := seedMachine(t, store)

	_, err := svc.AddReading(context.Background(), id, AddReadingRequest{
		ReadingDate:  "2024-02-01",
		CoinCounter:  900,
		PrizeCounter: 60,
	}, 7)
	require.ErrorIs(t, err, ErrCounterWentBackwards)
	require.Empty(t, store.readings[id], "a rejected reading must not be stored")
}

func TestAddReadingChainsFromLatestReading(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fixedTerms{terms: standardTerms()})
	id := seedMachine(t, store)

	_, err := svc.AddReading(context.Background(), id, AddReadingRequest{
		ReadingDate:  "2024-02-01",
		CoinCounter:  2000,
		PrizeCounter: 100,
	}, 7)
	require.NoError(t, err)

	delta, err := svc.AddReading(context.Background(), id, AddReadingRequest{
		ReadingDate:  "2024-03-01",
		CoinCounter:  2600,
		PrizeCounter: 130,
	}, 7)
	require.NoError(t, err)

	require.False(t, delta.Previous.Synthetic)
	require.Equal(t, 600.0, delta.CoinSales)
	require.Equal(t, 30.0, delta.PrizeOut)
}

func TestPreviewDeltaDoesNotPersist(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fixedTerms{terms: standardTerms()})
	id := seedMachine(t, store)

	delta, err := svc.PreviewDelta(context.Background(), id, AddReadingRequest{
		ReadingDate:  "2024-02-01",
		CoinCounter:  1100,
		PrizeCounter: 55,
	})
	require.NoError(t, err)
	require.Equal(t, 100.0, delta.CoinSales)
	require.Empty(t, store.readings[id])
}

func TestListReadingsPrependsSyntheticBaseline(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fixedTerms{terms: standardTerms()})
	id := seedMachine(t, store)

	_, err := svc.AddReading(context.Background(), id, AddReadingRequest{
		ReadingDate:  "2024-02-01",
		CoinCounter:  1500,
		PrizeCounter: 70,
	}, 7)
	require.NoError(t, err)

	readings, err := svc.ListReadings(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	require.True(t, readings[0].Synthetic)
	require.Equal(t, 1000.0, readings[0].CoinCounter)
	require.False(t, readings[1].Synthetic)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(settlement.DateLayout, s)
	require.NoError(t, err)
	return d
}
