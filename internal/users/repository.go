package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the user does not exist.
var ErrNotFound = errors.New("users: not found")

// ErrDuplicateEmail indicates the email is taken.
var ErrDuplicateEmail = errors.New("users: email already exists")

// Repository provides PostgreSQL backed persistence for user accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, is_active, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.IsActive, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns all users ordered by email.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Get fetches a user by id.
func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// Create inserts a user.
func (r *Repository) Create(ctx context.Context, u User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO users (email, name, is_active, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id`,
		u.Email, u.Name, u.IsActive, u.PasswordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	return id, nil
}

// Update applies a column map to a user row.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	setParts := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+1)
	args = append(args, id)
	for col, val := range updates {
		args = append(args, val)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	setParts = append(setParts, "updated_at = NOW()")

	tag, err := r.pool.Exec(ctx, `UPDATE users SET `+strings.Join(setParts, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
