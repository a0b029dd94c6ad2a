package expense

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	categories map[int64]*Category
	expenses   map[int64]*MachineExpense
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: make(map[int64]*Category),
		expenses:   make(map[int64]*MachineExpense),
		nextID:     1,
	}
}

func (f *fakeStore) CreateCategory(ctx context.Context, c Category) (int64, error) {
	for _, existing := range f.categories {
		if existing.Name == c.Name {
			return 0, ErrDuplicateCategory
		}
	}
	id := f.nextID
	f.nextID++
	c.ID = id
	f.categories[id] = &c
	return id, nil
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) GetCategory(ctx context.Context, id int64) (*Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*MachineExpense, error) {
	e, ok := f.expenses[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) Create(ctx context.Context, e MachineExpense) (int64, error) {
	id := f.nextID
	f.nextID++
	e.ID = id
	f.expenses[id] = &e
	return id, nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.expenses[id]; !ok {
		return ErrNotFound
	}
	delete(f.expenses, id)
	return nil
}

func (f *fakeStore) List(ctx context.Context, req ListExpensesRequest) ([]MachineExpense, int, error) {
	var out []MachineExpense
	for _, e := range f.expenses {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func TestCreateExpenseRequiresCategory(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	_, err := svc.Create(context.Background(), CreateExpenseRequest{
		CategoryID: 5, FranchiseID: 1, BankID: 1, Amount: 100,
		ExpenseDate: "2024-06-01", Description: "electricity bill",
	}, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateExpense(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)

	cat, err := svc.CreateCategory(context.Background(), CreateCategoryRequest{Name: "Utilities"}, 1)
	require.NoError(t, err)

	e, err := svc.Create(context.Background(), CreateExpenseRequest{
		CategoryID: cat.ID, FranchiseID: 1, BankID: 2, Amount: 750,
		ExpenseDate: "2024-06-01", Description: "electricity bill",
	}, 1)
	require.NoError(t, err)
	require.Equal(t, 750.0, e.Amount)
	require.Nil(t, e.MachineID)
}

func TestDuplicateCategoryName(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	_, err := svc.CreateCategory(context.Background(), CreateCategoryRequest{Name: "Repairs"}, 1)
	require.NoError(t, err)
	_, err = svc.CreateCategory(context.Background(), CreateCategoryRequest{Name: "Repairs"}, 1)
	require.ErrorIs(t, err, ErrDuplicateCategory)
}
