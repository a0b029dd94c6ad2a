package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clowee-erp/clowee-erp/internal/platform/db"
)

// ErrNotFound indicates the payment does not exist.
var ErrNotFound = errors.New("payment: not found")

// Repository provides PostgreSQL backed persistence for payments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const paymentColumns = `id, sale_id, franchise_id, bank_id, invoice_number, amount, payment_date,
method, reference_number, notes, created_by, created_at`

func scanPayment(row pgx.Row) (*MachinePayment, error) {
	var p MachinePayment
	err := row.Scan(&p.ID, &p.SaleID, &p.FranchiseID, &p.BankID, &p.InvoiceNumber, &p.Amount,
		&p.PaymentDate, &p.Method, &p.ReferenceNumber, &p.Notes, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Get fetches a payment by id.
func (r *Repository) Get(ctx context.Context, id int64) (*MachinePayment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM machine_payments WHERE id = $1`, id))
}

// Create inserts the payment and its bank money-log entry in one
// repeatable-read transaction.
func (r *Repository) Create(ctx context.Context, p MachinePayment) (*MachinePayment, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO machine_payments
(sale_id, franchise_id, bank_id, invoice_number, amount, payment_date, method,
 reference_number, notes, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW()) RETURNING id, created_at`,
			p.SaleID, p.FranchiseID, p.BankID, p.InvoiceNumber, p.Amount, p.PaymentDate,
			p.Method, p.ReferenceNumber, p.Notes, p.CreatedBy).Scan(&p.ID, &p.CreatedAt); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `INSERT INTO bank_money_logs
(bank_id, entry_type, amount, description, payment_id, entry_date, created_by, created_at)
VALUES ($1,'deposit',$2,$3,$4,$5,$6,NOW())`,
			p.BankID, p.Amount, "payment against "+p.InvoiceNumber, p.ID, p.PaymentDate, p.CreatedBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete reverses a payment: removes the row and its bank log entry in one
// transaction.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM bank_money_logs WHERE payment_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM machine_payments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// List returns payments matching the filter, newest first, with the total
// count.
func (r *Repository) List(ctx context.Context, req ListPaymentsRequest) ([]MachinePayment, int, error) {
	var where []string
	var args []any
	if req.SaleID > 0 {
		args = append(args, req.SaleID)
		where = append(where, fmt.Sprintf("sale_id = $%d", len(args)))
	}
	if req.FranchiseID > 0 {
		args = append(args, req.FranchiseID)
		where = append(where, fmt.Sprintf("franchise_id = $%d", len(args)))
	}
	if req.BankID > 0 {
		args = append(args, req.BankID)
		where = append(where, fmt.Sprintf("bank_id = $%d", len(args)))
	}
	if req.FromDate != nil {
		args = append(args, *req.FromDate)
		where = append(where, fmt.Sprintf("payment_date >= $%d", len(args)))
	}
	if req.ToDate != nil {
		args = append(args, *req.ToDate)
		where = append(where, fmt.Sprintf("payment_date <= $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM machine_payments`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.PerPage, (req.Page-1)*req.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM machine_payments%s ORDER BY payment_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, clause, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []MachinePayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// ListBySale returns all payments for one sale, oldest first.
func (r *Repository) ListBySale(ctx context.Context, saleID int64) ([]MachinePayment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM machine_payments
WHERE sale_id = $1 ORDER BY payment_date, id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MachinePayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// TotalPaidBySale sums payments per sale for the given ids.
func (r *Repository) TotalPaidBySale(ctx context.Context, saleIDs []int64) (map[int64]float64, error) {
	out := make(map[int64]float64, len(saleIDs))
	if len(saleIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT sale_id, SUM(amount) FROM machine_payments
WHERE sale_id = ANY($1) GROUP BY sale_id`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var saleID int64
		var total float64
		if err := rows.Scan(&saleID, &total); err != nil {
			return nil, err
		}
		out[saleID] = total
	}
	return out, rows.Err()
}
