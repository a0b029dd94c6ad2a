package roles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	roles  map[int64]*Role
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{roles: make(map[int64]*Role), nextID: 1}
}

func (f *fakeStore) List(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) Create(ctx context.Context, name, description string) (*Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return nil, ErrDuplicateName
		}
	}
	r := &Role{ID: f.nextID, Name: name, Description: description, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.roles[r.ID] = r
	f.nextID++
	cp := *r
	return &cp, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, name, description string) (*Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Name = name
	r.Description = description
	r.UpdatedAt = time.Now()
	cp := *r
	return &cp, nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.roles[id]; !ok {
		return ErrNotFound
	}
	delete(f.roles, id)
	return nil
}

func TestCreateTrimsInput(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)

	role, err := svc.Create(context.Background(), CreateRoleRequest{Name: "  Manager  ", Description: " Runs franchises "}, 1)
	require.NoError(t, err)
	require.Equal(t, "Manager", role.Name)
	require.Equal(t, "Runs franchises", role.Description)
}

func TestCreateDuplicateName(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRoleRequest{Name: "Manager"}, 1)
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateRoleRequest{Name: "Manager"}, 1)
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestDeleteMissingRole(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)

	err := svc.Delete(context.Background(), 42, 1)
	require.ErrorIs(t, err, ErrNotFound)
}
