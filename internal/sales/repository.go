package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clowee-erp/clowee-erp/internal/platform/db"
	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// ErrNotFound indicates the sale does not exist.
var ErrNotFound = errors.New("sales: not found")

// ErrDuplicateInvoice indicates an invoice number collision.
var ErrDuplicateInvoice = errors.New("sales: invoice number already exists")

// Repository provides PostgreSQL backed persistence for sales.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const saleColumns = `id, machine_id, franchise_id, invoice_number, sales_date, coin_sales,
prize_out_quantity, coin_adjustment, prize_adjustment, adjustment_notes,
sales_amount, vat_amount, net_sales_amount, prize_cost, net_profit,
maintenance_amount, franchise_profit, clowee_profit, pay_to_clowee,
created_by, created_at, updated_at`

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.MachineID, &s.FranchiseID, &s.InvoiceNumber, &s.SalesDate,
		&s.CoinSales, &s.PrizeOutQuantity, &s.CoinAdjustment, &s.PrizeAdjustment, &s.AdjustmentNotes,
		&s.Settlement.SalesAmount, &s.Settlement.VATAmount, &s.Settlement.NetSalesAmount,
		&s.Settlement.PrizeCost, &s.Settlement.NetProfit, &s.Settlement.MaintenanceAmount,
		&s.Settlement.FranchiseProfit, &s.Settlement.CloweeProfit, &s.Settlement.PayToClowee,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Get fetches a sale by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Sale, error) {
	return scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM machine_sales WHERE id = $1`, id))
}

// GetByInvoice fetches a sale by invoice number.
func (r *Repository) GetByInvoice(ctx context.Context, invoiceNumber string) (*Sale, error) {
	return scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM machine_sales WHERE invoice_number = $1`, invoiceNumber))
}

// List returns sales matching the filter, newest first, with the total count.
func (r *Repository) List(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	var where []string
	var args []any
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
		where = append(where, fmt.Sprintf("sales_date >= $%d", len(args)))
	}
	if req.ToDate != nil {
		args = append(args, *req.ToDate)
		where = append(where, fmt.Sprintf("sales_date <= $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM machine_sales`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.PerPage, (req.Page-1)*req.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM machine_sales%s ORDER BY sales_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		saleColumns, clause, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

// Create inserts a sale, assigning the next invoice number for its month
// inside one repeatable-read transaction.
func (r *Repository) Create(ctx context.Context, s Sale) (*Sale, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		number, err := nextInvoiceNumber(ctx, tx, s.SalesDate)
		if err != nil {
			return fmt.Errorf("next invoice number: %w", err)
		}
		s.InvoiceNumber = number

		return tx.QueryRow(ctx, `INSERT INTO machine_sales
(machine_id, franchise_id, invoice_number, sales_date, coin_sales, prize_out_quantity,
 coin_adjustment, prize_adjustment, adjustment_notes,
 sales_amount, vat_amount, net_sales_amount, prize_cost, net_profit,
 maintenance_amount, franchise_profit, clowee_profit, pay_to_clowee,
 created_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,NOW(),NOW())
RETURNING id, created_at, updated_at`,
			s.MachineID, s.FranchiseID, s.InvoiceNumber, s.SalesDate, s.CoinSales, s.PrizeOutQuantity,
			s.CoinAdjustment, s.PrizeAdjustment, s.AdjustmentNotes,
			s.Settlement.SalesAmount, s.Settlement.VATAmount, s.Settlement.NetSalesAmount,
			s.Settlement.PrizeCost, s.Settlement.NetProfit, s.Settlement.MaintenanceAmount,
			s.Settlement.FranchiseProfit, s.Settlement.CloweeProfit, s.Settlement.PayToClowee,
			s.CreatedBy).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateInvoice
		}
		return nil, err
	}
	return &s, nil
}

// nextInvoiceNumber derives INV-YYYYMM-NNNN from the highest suffix already
// issued for the month. Runs inside the insert transaction so concurrent
// creates serialize on the unique index instead of racing silently.
func nextInvoiceNumber(ctx context.Context, tx pgx.Tx, salesDate time.Time) (string, error) {
	prefix := "INV-" + salesDate.Format("200601") + "-"
	var next int
	err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(SUBSTRING(invoice_number FROM 12)::int), 0) + 1
FROM machine_sales WHERE invoice_number LIKE $1`, prefix+"%").Scan(&next)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, next), nil
}

// Update rewrites the mutable columns of a sale.
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
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE machine_sales SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InputsForRange returns the aggregator inputs for one franchise over an
// inclusive date range. Dates stay in transport form so the aggregator's
// fail-open filtering applies uniformly.
func (r *Repository) InputsForRange(ctx context.Context, franchiseID int64, fromDate, toDate time.Time) ([]settlement.SaleInput, error) {
	rows, err := r.pool.Query(ctx, `SELECT machine_id, to_char(sales_date, 'YYYY-MM-DD'),
coin_sales + coin_adjustment, prize_out_quantity + prize_adjustment,
sales_amount, vat_amount, net_sales_amount, prize_cost, net_profit,
maintenance_amount, franchise_profit, clowee_profit, pay_to_clowee
FROM machine_sales WHERE franchise_id = $1 AND sales_date BETWEEN $2 AND $3
ORDER BY sales_date, id`, franchiseID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []settlement.SaleInput
	for rows.Next() {
		var in settlement.SaleInput
		var stored settlement.Settlement
		if err := rows.Scan(&in.MachineID, &in.SalesDate, &in.CoinSales, &in.PrizeOutQuantity,
			&stored.SalesAmount, &stored.VATAmount, &stored.NetSalesAmount, &stored.PrizeCost,
			&stored.NetProfit, &stored.MaintenanceAmount, &stored.FranchiseProfit,
			&stored.CloweeProfit, &stored.PayToClowee); err != nil {
			return nil, err
		}
		in.Stored = &stored
		out = append(out, in)
	}
	return out, rows.Err()
}
