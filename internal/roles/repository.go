package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the role does not exist.
var ErrNotFound = errors.New("roles: not found")

// ErrDuplicateName indicates the role name is taken.
var ErrDuplicateName = errors.New("roles: name already exists")

// Repository provides PostgreSQL backed persistence for roles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, name, description, created_at, updated_at`

func scanRole(row pgx.Row) (*Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// List returns all roles ordered by name.
func (r *Repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *role)
	}
	return out, rows.Err()
}

// Get fetches a role by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
}

// Create inserts a role.
func (r *Repository) Create(ctx context.Context, name, description string) (*Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `INSERT INTO roles (name, description, created_at, updated_at)
VALUES ($1, $2, NOW(), NOW()) RETURNING `+roleColumns, name, description))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return role, nil
}

// Update modifies a role.
func (r *Repository) Update(ctx context.Context, id int64, name, description string) (*Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `UPDATE roles SET name = $2, description = $3, updated_at = NOW()
WHERE id = $1 RETURNING `+roleColumns, id, name, description))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return role, nil
}

// Delete removes a role. Assignments cascade at the database level.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
