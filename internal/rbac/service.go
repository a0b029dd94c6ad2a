package rbac

import (
	"context"
	"strings"
)

// Store defines the persistence operations the service needs.
type Store interface {
	ListPermissions(ctx context.Context) ([]Permission, error)
	UpsertPermission(ctx context.Context, name, description string) (Permission, error)
	RolePermissions(ctx context.Context, roleID int64) ([]Permission, error)
	AttachPermission(ctx context.Context, roleID, permissionID int64) error
	DetachPermission(ctx context.Context, roleID, permissionID int64) error
	AssignRole(ctx context.Context, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) error
	UserRoles(ctx context.Context, userID int64) ([]Role, error)
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
}

// Service orchestrates permission and assignment operations.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListPermissions returns all permissions ordered by name.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.store.ListPermissions(ctx)
}

// EnsurePermission upserts a permission ensuring the description is stored.
func (s *Service) EnsurePermission(ctx context.Context, name, description string) (Permission, error) {
	return s.store.UpsertPermission(ctx, strings.TrimSpace(name), strings.TrimSpace(description))
}

// EnsureCatalog upserts every known permission. Called once at startup.
func (s *Service) EnsureCatalog(ctx context.Context) error {
	for _, p := range Catalog {
		if _, err := s.EnsurePermission(ctx, p.Name, p.Description); err != nil {
			return err
		}
	}
	return nil
}

// RolePermissions returns the permissions attached to a role.
func (s *Service) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	return s.store.RolePermissions(ctx, roleID)
}

// SetRolePermissions replaces the permission set of a role, attaching the
// missing ones and detaching the ones no longer listed.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	current, err := s.store.RolePermissions(ctx, roleID)
	if err != nil {
		return err
	}
	existing := make(map[int64]struct{}, len(current))
	for _, p := range current {
		existing[p.ID] = struct{}{}
	}
	keep := make(map[int64]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		keep[id] = struct{}{}
		if _, ok := existing[id]; !ok {
			if err := s.store.AttachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	for id := range existing {
		if _, ok := keep[id]; !ok {
			if err := s.store.DetachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// AssignRole assigns a role to the given user.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	return s.store.AssignRole(ctx, userID, roleID)
}

// RemoveRole removes a role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	return s.store.RemoveRole(ctx, userID, roleID)
}

// UserRoles returns the roles assigned to a user.
func (s *Service) UserRoles(ctx context.Context, userID int64) ([]Role, error) {
	return s.store.UserRoles(ctx, userID)
}

// EffectivePermissions returns the permission names granted to a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.store.EffectivePermissions(ctx, userID)
}
