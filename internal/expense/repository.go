package expense

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the category or expense does not exist.
var ErrNotFound = errors.New("expense: not found")

// ErrDuplicateCategory indicates the category name is taken.
var ErrDuplicateCategory = errors.New("expense: category name already exists")

// Repository provides PostgreSQL backed persistence for expenses.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, c Category) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO expense_categories (name, description, created_at)
VALUES ($1,$2,NOW()) RETURNING id`, c.Name, c.Description).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateCategory
		}
		return 0, err
	}
	return id, nil
}

// ListCategories returns all categories by name.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at
FROM expense_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCategory fetches a category by id.
func (r *Repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, created_at
FROM expense_categories WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

const expenseColumns = `id, category_id, franchise_id, machine_id, bank_id, amount, expense_date,
description, created_by, created_at`

func scanExpense(row pgx.Row) (*MachineExpense, error) {
	var e MachineExpense
	err := row.Scan(&e.ID, &e.CategoryID, &e.FranchiseID, &e.MachineID, &e.BankID, &e.Amount,
		&e.ExpenseDate, &e.Description, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Get fetches an expense by id.
func (r *Repository) Get(ctx context.Context, id int64) (*MachineExpense, error) {
	return scanExpense(r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM machine_expenses WHERE id = $1`, id))
}

// Create inserts an expense.
func (r *Repository) Create(ctx context.Context, e MachineExpense) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO machine_expenses
(category_id, franchise_id, machine_id, bank_id, amount, expense_date, description, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW()) RETURNING id`,
		e.CategoryID, e.FranchiseID, e.MachineID, e.BankID, e.Amount, e.ExpenseDate,
		e.Description, e.CreatedBy).Scan(&id)
	return id, err
}

// Delete removes an expense.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM machine_expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns expenses matching the filter, newest first, with the total
// count.
func (r *Repository) List(ctx context.Context, req ListExpensesRequest) ([]MachineExpense, int, error) {
	var where []string
	var args []any
	if req.CategoryID > 0 {
		args = append(args, req.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if req.FranchiseID > 0 {
		args = append(args, req.FranchiseID)
		where = append(where, fmt.Sprintf("franchise_id = $%d", len(args)))
	}
	if req.MachineID > 0 {
		args = append(args, req.MachineID)
		where = append(where, fmt.Sprintf("machine_id = $%d", len(args)))
	}
	if req.FromDate != nil {
		args = append(args, *req.FromDate)
		where = append(where, fmt.Sprintf("expense_date >= $%d", len(args)))
	}
	if req.ToDate != nil {
		args = append(args, *req.ToDate)
		where = append(where, fmt.Sprintf("expense_date <= $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM machine_expenses`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.PerPage, (req.Page-1)*req.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM machine_expenses%s ORDER BY expense_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		expenseColumns, clause, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []MachineExpense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

// TotalByFranchise sums expenses for one franchise over an inclusive range.
func (r *Repository) TotalByFranchise(ctx context.Context, franchiseID int64, req ListExpensesRequest) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM machine_expenses
WHERE franchise_id = $1 AND ($2::date IS NULL OR expense_date >= $2)
AND ($3::date IS NULL OR expense_date <= $3)`, franchiseID, req.FromDate, req.ToDate).Scan(&total)
	return total, err
}
