package bank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	banks    map[int64]*Bank
	logs     map[int64][]MoneyLog
	expenses map[int64]float64
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		banks:    make(map[int64]*Bank),
		logs:     make(map[int64][]MoneyLog),
		expenses: make(map[int64]float64),
		nextID:   1,
	}
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*Bank, error) {
	b, ok := f.banks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) List(ctx context.Context, activeOnly bool) ([]Bank, error) {
	var out []Bank
	for _, b := range f.banks {
		if activeOnly && !b.IsActive {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, b Bank) (int64, error) {
	id := f.nextID
	f.nextID++
	b.ID = id
	f.banks[id] = &b
	return id, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, updates map[string]any) error {
	b, ok := f.banks[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["is_active"]; ok {
		b.IsActive = v.(bool)
	}
	return nil
}

func (f *fakeStore) AddMoneyLog(ctx context.Context, l MoneyLog) (int64, error) {
	id := f.nextID
	f.nextID++
	l.ID = id
	f.logs[l.BankID] = append(f.logs[l.BankID], l)
	return id, nil
}

func (f *fakeStore) ListMoneyLogs(ctx context.Context, bankID int64, page, perPage int) ([]MoneyLog, int, error) {
	logs := f.logs[bankID]
	return append([]MoneyLog(nil), logs...), len(logs), nil
}

func (f *fakeStore) Balance(ctx context.Context, bankID int64) (float64, error) {
	var balance float64
	for _, l := range f.logs[bankID] {
		balance += l.Signed()
	}
	return balance - f.expenses[bankID], nil
}

func seedBank(t *testing.T, svc *Service) int64 {
	t.Helper()
	b, err := svc.Create(context.Background(), CreateBankRequest{
		Name:          "City Bank",
		AccountName:   "Clowee Ltd",
		AccountNumber: "001-002-003",
	}, 1)
	require.NoError(t, err)
	return b.ID
}

func TestBalanceDerivedFromLogs(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)
	id := seedBank(t, svc)

	_, err := svc.AddMoneyLog(context.Background(), id, AddMoneyLogRequest{
		EntryType: EntryDeposit, Amount: 5000, Description: "opening deposit", EntryDate: "2024-06-01",
	}, 1)
	require.NoError(t, err)
	_, err = svc.AddMoneyLog(context.Background(), id, AddMoneyLogRequest{
		EntryType: EntryWithdraw, Amount: 1200, Description: "prize stock purchase", EntryDate: "2024-06-05",
	}, 1)
	require.NoError(t, err)

	view, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 3800.0, view.Balance)
}

func TestBalanceSubtractsExpenses(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)
	id := seedBank(t, svc)

	_, err := svc.AddMoneyLog(context.Background(), id, AddMoneyLogRequest{
		EntryType: EntryDeposit, Amount: 5000, Description: "opening deposit", EntryDate: "2024-06-01",
	}, 1)
	require.NoError(t, err)
	store.expenses[id] = 700

	view, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 4300.0, view.Balance)
}

func TestAdjustEntryCarriesItsOwnSign(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)
	id := seedBank(t, svc)

	_, err := svc.AddMoneyLog(context.Background(), id, AddMoneyLogRequest{
		EntryType: EntryAdjust, Amount: -250, Description: "bank fee correction", EntryDate: "2024-06-10",
	}, 1)
	require.NoError(t, err)

	view, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, -250.0, view.Balance)
}

func TestAddMoneyLogUnknownBank(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	_, err := svc.AddMoneyLog(context.Background(), 42, AddMoneyLogRequest{
		EntryType: EntryDeposit, Amount: 100, Description: "x", EntryDate: "2024-06-01",
	}, 1)
	require.ErrorIs(t, err, ErrNotFound)
}
