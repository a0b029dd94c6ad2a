package rbac

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	perms     map[int64]Permission
	nextID    int64
	rolePerms map[int64]map[int64]struct{}
	userRoles map[int64]map[int64]struct{}
	roles     map[int64]Role
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		perms:     make(map[int64]Permission),
		nextID:    1,
		rolePerms: make(map[int64]map[int64]struct{}),
		userRoles: make(map[int64]map[int64]struct{}),
		roles:     make(map[int64]Role),
	}
}

func (f *fakeStore) ListPermissions(ctx context.Context) ([]Permission, error) {
	out := make([]Permission, 0, len(f.perms))
	for _, p := range f.perms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) UpsertPermission(ctx context.Context, name, description string) (Permission, error) {
	for id, p := range f.perms {
		if p.Name == name {
			p.Description = description
			f.perms[id] = p
			return p, nil
		}
	}
	p := Permission{ID: f.nextID, Name: name, Description: description}
	f.perms[p.ID] = p
	f.nextID++
	return p, nil
}

func (f *fakeStore) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	var out []Permission
	for id := range f.rolePerms[roleID] {
		out = append(out, f.perms[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	if f.rolePerms[roleID] == nil {
		f.rolePerms[roleID] = make(map[int64]struct{})
	}
	f.rolePerms[roleID][permissionID] = struct{}{}
	return nil
}

func (f *fakeStore) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	delete(f.rolePerms[roleID], permissionID)
	return nil
}

func (f *fakeStore) AssignRole(ctx context.Context, userID, roleID int64) error {
	if f.userRoles[userID] == nil {
		f.userRoles[userID] = make(map[int64]struct{})
	}
	f.userRoles[userID][roleID] = struct{}{}
	return nil
}

func (f *fakeStore) RemoveRole(ctx context.Context, userID, roleID int64) error {
	if _, ok := f.userRoles[userID][roleID]; !ok {
		return ErrNotFound
	}
	delete(f.userRoles[userID], roleID)
	return nil
}

func (f *fakeStore) UserRoles(ctx context.Context, userID int64) ([]Role, error) {
	var out []Role
	for id := range f.userRoles[userID] {
		out = append(out, f.roles[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	seen := make(map[string]struct{})
	for roleID := range f.userRoles[userID] {
		for permID := range f.rolePerms[roleID] {
			seen[f.perms[permID].Name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func TestSetRolePermissionsDiffs(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	view, err := svc.EnsurePermission(ctx, "sales.view", "")
	require.NoError(t, err)
	create, err := svc.EnsurePermission(ctx, "sales.create", "")
	require.NoError(t, err)
	edit, err := svc.EnsurePermission(ctx, "sales.edit", "")
	require.NoError(t, err)

	require.NoError(t, svc.SetRolePermissions(ctx, 1, []int64{view.ID, create.ID}))

	perms, err := svc.RolePermissions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, perms, 2)

	// Replacing the set detaches what is no longer listed.
	require.NoError(t, svc.SetRolePermissions(ctx, 1, []int64{view.ID, edit.ID}))

	perms, err = svc.RolePermissions(ctx, 1)
	require.NoError(t, err)
	names := []string{perms[0].Name, perms[1].Name}
	require.Equal(t, []string{"sales.edit", "sales.view"}, names)
}

func TestEffectivePermissionsAcrossRoles(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	view, _ := svc.EnsurePermission(ctx, "sales.view", "")
	create, _ := svc.EnsurePermission(ctx, "sales.create", "")

	require.NoError(t, svc.SetRolePermissions(ctx, 1, []int64{view.ID}))
	require.NoError(t, svc.SetRolePermissions(ctx, 2, []int64{view.ID, create.ID}))

	require.NoError(t, svc.AssignRole(ctx, 7, 1))
	require.NoError(t, svc.AssignRole(ctx, 7, 2))

	granted, err := svc.EffectivePermissions(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, []string{"sales.create", "sales.view"}, granted)

	require.NoError(t, svc.RemoveRole(ctx, 7, 2))
	granted, err = svc.EffectivePermissions(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, []string{"sales.view"}, granted)
}

func TestRemoveRoleNotAssigned(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	err := svc.RemoveRole(context.Background(), 7, 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureCatalogIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.EnsureCatalog(ctx))
	require.NoError(t, svc.EnsureCatalog(ctx))

	perms, err := svc.ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, len(Catalog))
}
