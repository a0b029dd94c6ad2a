package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Repository provides PostgreSQL backed persistence for permissions and
// role/user assignments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListPermissions returns all permissions ordered by name.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	var out []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertPermission inserts a permission, updating the description when the
// name already exists.
func (r *Repository) UpsertPermission(ctx context.Context, name, description string) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `INSERT INTO permissions (name, description) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
RETURNING id, name, description`, name, description).Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		return Permission{}, fmt.Errorf("upsert permission: %w", err)
	}
	return p, nil
}

// RolePermissions returns the permissions attached to a role.
func (r *Repository) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, p.description
FROM role_permissions rp JOIN permissions p ON p.id = rp.permission_id
WHERE rp.role_id = $1 ORDER BY p.name`, roleID)
	if err != nil {
		return nil, fmt.Errorf("role permissions: %w", err)
	}
	defer rows.Close()

	var out []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AttachPermission links a permission to a role, ignoring duplicates.
func (r *Repository) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO role_permissions (role_id, permission_id)
VALUES ($1, $2) ON CONFLICT DO NOTHING`, roleID, permissionID)
	return err
}

// DetachPermission removes a permission from a role.
func (r *Repository) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
	return err
}

// AssignRole links a role to a user, ignoring duplicates.
func (r *Repository) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_roles (user_id, role_id)
VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, roleID)
	return err
}

// RemoveRole removes a role from a user.
func (r *Repository) RemoveRole(ctx context.Context, userID, roleID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UserRoles returns the roles assigned to a user.
func (r *Repository) UserRoles(ctx context.Context, userID int64) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT r.id, r.name, r.description, r.created_at, r.updated_at
FROM user_roles ur JOIN roles r ON r.id = ur.role_id
WHERE ur.user_id = $1 ORDER BY r.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("user roles: %w", err)
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// EffectivePermissions returns deduplicated permission names granted to a
// user through any of their roles.
func (r *Repository) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT p.name
FROM user_roles ur
JOIN role_permissions rp ON rp.role_id = ur.role_id
JOIN permissions p ON p.id = rp.permission_id
WHERE ur.user_id = $1 ORDER BY p.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("effective permissions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
