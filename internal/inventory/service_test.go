package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	items     map[int64]*StockItem
	movements map[int64][]Movement
	stockOuts []StockOutEntry
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:     make(map[int64]*StockItem),
		movements: make(map[int64][]Movement),
		nextID:    1,
	}
}

func (f *fakeStore) GetItem(ctx context.Context, id int64) (*StockItem, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeStore) ListItems(ctx context.Context, activeOnly bool) ([]StockItem, error) {
	var out []StockItem
	for _, it := range f.items {
		if activeOnly && !it.IsActive {
			continue
		}
		out = append(out, *it)
	}
	return out, nil
}

func (f *fakeStore) CreateItem(ctx context.Context, it StockItem) (int64, error) {
	id := f.nextID
	f.nextID++
	it.ID = id
	f.items[id] = &it
	return id, nil
}

func (f *fakeStore) UpdateItem(ctx context.Context, id int64, updates map[string]any) error {
	it, ok := f.items[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["is_active"]; ok {
		it.IsActive = v.(bool)
	}
	return nil
}

func (f *fakeStore) AddMovement(ctx context.Context, m Movement) (int64, error) {
	id := f.nextID
	f.nextID++
	m.ID = id
	f.movements[m.ItemID] = append(f.movements[m.ItemID], m)
	return id, nil
}

func (f *fakeStore) ListMovements(ctx context.Context, itemID int64, page, perPage int) ([]Movement, int, error) {
	ms := f.movements[itemID]
	return append([]Movement(nil), ms...), len(ms), nil
}

func (f *fakeStore) OnHand(ctx context.Context, itemID int64) (float64, error) {
	var onHand float64
	for _, m := range f.movements[itemID] {
		onHand += m.Quantity
	}
	return onHand, nil
}

func (f *fakeStore) RecordStockOut(ctx context.Context, e StockOutEntry, createdBy int64) (*StockOutEntry, error) {
	id := f.nextID
	f.nextID++
	e.ID = id
	f.stockOuts = append(f.stockOuts, e)
	f.movements[e.ItemID] = append(f.movements[e.ItemID], Movement{
		ItemID: e.ItemID, MovementType: MovementOut, Quantity: -e.Quantity, CreatedBy: createdBy,
	})
	return &e, nil
}

func (f *fakeStore) ListStockOuts(ctx context.Context, machineID int64) ([]StockOutEntry, error) {
	var out []StockOutEntry
	for _, e := range f.stockOuts {
		if e.MachineID == machineID {
			out = append(out, e)
		}
	}
	return out, nil
}

func seedItem(t *testing.T, svc *Service) int64 {
	t.Helper()
	it, err := svc.CreateItem(context.Background(), CreateItemRequest{
		Name: "Teddy Bear 20cm", SKU: "DOLL-TB20", UnitCost: 120,
	}, 1)
	require.NoError(t, err)
	return it.ID
}

func TestOnHandDerivedFromMovements(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)
	id := seedItem(t, svc)

	_, err := svc.AddMovement(context.Background(), id, AddMovementRequest{
		MovementType: MovementIn, Quantity: 200, Reference: "PO-55", MovementDate: "2024-06-01",
	}, 1)
	require.NoError(t, err)
	_, err = svc.AddMovement(context.Background(), id, AddMovementRequest{
		MovementType: MovementOut, Quantity: 30, Reference: "machine refill", MovementDate: "2024-06-05",
	}, 1)
	require.NoError(t, err)

	view, err := svc.GetItem(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 170.0, view.OnHand)
}

func TestOutMovementNormalizedToNegative(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)
	id := seedItem(t, svc)

	m, err := svc.AddMovement(context.Background(), id, AddMovementRequest{
		MovementType: MovementOut, Quantity: 10, Reference: "refill", MovementDate: "2024-06-05",
	}, 1)
	require.NoError(t, err)
	require.Equal(t, -10.0, m.Quantity)
}

func TestRecordStockOutPostsMovement(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)
	id := seedItem(t, svc)

	_, err := svc.AddMovement(context.Background(), id, AddMovementRequest{
		MovementType: MovementIn, Quantity: 100, Reference: "PO-56", MovementDate: "2024-06-01",
	}, 1)
	require.NoError(t, err)

	entry, err := svc.RecordStockOut(context.Background(), RecordStockOutRequest{
		ItemID: id, MachineID: 4, SaleID: 9, Quantity: 50, OutDate: "2024-06-15",
	}, 1)
	require.NoError(t, err)
	require.Equal(t, 50.0, entry.Quantity)

	view, err := svc.GetItem(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 50.0, view.OnHand)

	outs, err := svc.ListStockOuts(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, outs, 1)
}
