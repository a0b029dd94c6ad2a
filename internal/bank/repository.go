package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the bank does not exist.
var ErrNotFound = errors.New("bank: not found")

// ErrDuplicateAccount indicates the account number is already registered.
var ErrDuplicateAccount = errors.New("bank: account number already exists")

// Repository provides PostgreSQL backed persistence for banks and their
// money logs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const bankColumns = `id, name, account_name, account_number, branch, is_active, created_at, updated_at`

func scanBank(row pgx.Row) (*Bank, error) {
	var b Bank
	err := row.Scan(&b.ID, &b.Name, &b.AccountName, &b.AccountNumber, &b.Branch,
		&b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Get fetches a bank by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Bank, error) {
	return scanBank(r.pool.QueryRow(ctx, `SELECT `+bankColumns+` FROM banks WHERE id = $1`, id))
}

// List returns all banks, active first.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]Bank, error) {
	query := `SELECT ` + bankColumns + ` FROM banks`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY is_active DESC, name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bank
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Create inserts a bank.
func (r *Repository) Create(ctx context.Context, b Bank) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO banks
(name, account_name, account_number, branch, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,TRUE,NOW(),NOW()) RETURNING id`,
		b.Name, b.AccountName, b.AccountNumber, b.Branch).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateAccount
		}
		return 0, err
	}
	return id, nil
}

// Update applies a column update map.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	sets := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+1)
	for col, val := range updates {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE banks SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMoneyLog appends a manual entry.
func (r *Repository) AddMoneyLog(ctx context.Context, l MoneyLog) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO bank_money_logs
(bank_id, entry_type, amount, description, payment_id, entry_date, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW()) RETURNING id`,
		l.BankID, l.EntryType, l.Amount, l.Description, l.PaymentID, l.EntryDate, l.CreatedBy).Scan(&id)
	return id, err
}

// ListMoneyLogs returns a bank's log, newest first, with the total count.
func (r *Repository) ListMoneyLogs(ctx context.Context, bankID int64, page, perPage int) ([]MoneyLog, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bank_money_logs WHERE bank_id = $1`, bankID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, bank_id, entry_type, amount, description, payment_id,
entry_date, created_by, created_at
FROM bank_money_logs WHERE bank_id = $1 ORDER BY entry_date DESC, id DESC LIMIT $2 OFFSET $3`,
		bankID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []MoneyLog
	for rows.Next() {
		var l MoneyLog
		if err := rows.Scan(&l.ID, &l.BankID, &l.EntryType, &l.Amount, &l.Description, &l.PaymentID,
			&l.EntryDate, &l.CreatedBy, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// Balance derives a bank's balance: signed money-log entries minus expenses
// paid from the account. Payment deposits are already in the log.
func (r *Repository) Balance(ctx context.Context, bankID int64) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx, `SELECT
COALESCE((SELECT SUM(CASE WHEN entry_type = 'withdraw' THEN -amount ELSE amount END)
          FROM bank_money_logs WHERE bank_id = $1), 0)
- COALESCE((SELECT SUM(amount) FROM machine_expenses WHERE bank_id = $1), 0)`, bankID).Scan(&balance)
	return balance, err
}
