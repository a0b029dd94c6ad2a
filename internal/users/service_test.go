package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	users  map[int64]*User
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]*User), nextID: 1}
}

func (f *fakeStore) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) Create(ctx context.Context, u User) (int64, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return 0, ErrDuplicateEmail
		}
	}
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	f.users[u.ID] = &u
	f.nextID++
	return u.ID, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, updates map[string]any) error {
	u, ok := f.users[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		u.Name = v.(string)
	}
	if v, ok := updates["is_active"]; ok {
		u.IsActive = v.(bool)
	}
	if v, ok := updates["password_hash"]; ok {
		u.PasswordHash = v.(string)
	}
	return nil
}

func TestCreateHashesPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "Admin@Clowee.Test",
		Name:     "Admin",
		Password: "secret-pass",
	}, 1)
	require.NoError(t, err)
	require.Equal(t, "admin@clowee.test", u.Email, "email is normalized")
	require.True(t, u.IsActive)
	require.NotEqual(t, "secret-pass", u.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret-pass")))
}

func TestCreateDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{Email: "a@clowee.test", Name: "First", Password: "secret-pass"}, 1)
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserRequest{Email: "A@clowee.test", Name: "Second", Password: "secret-pass"}, 1)
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUpdateRehashesPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserRequest{Email: "a@clowee.test", Name: "First", Password: "secret-pass"}, 1)
	require.NoError(t, err)

	newPass := "another-pass"
	inactive := false
	updated, err := svc.Update(ctx, created.ID, UpdateUserRequest{Password: &newPass, IsActive: &inactive}, 1)
	require.NoError(t, err)
	require.False(t, updated.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("another-pass")))
}

func TestUpdateMissingUser(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)

	name := "Ghost"
	_, err := svc.Update(context.Background(), 42, UpdateUserRequest{Name: &name}, 1)
	require.ErrorIs(t, err, ErrNotFound)
}
