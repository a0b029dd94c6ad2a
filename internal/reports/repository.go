package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// Repository runs the report aggregation queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// MonthlyTrend returns one row per month of the year that has sales.
func (r *Repository) MonthlyTrend(ctx context.Context, year int) ([]MonthlyTrendRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT to_char(sales_date, 'YYYY-MM'), COUNT(*),
COALESCE(SUM(coin_sales + coin_adjustment), 0), COALESCE(SUM(sales_amount), 0), COALESCE(SUM(pay_to_clowee), 0)
FROM machine_sales WHERE EXTRACT(YEAR FROM sales_date) = $1
GROUP BY 1 ORDER BY 1`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthlyTrendRow
	for rows.Next() {
		var row MonthlyTrendRow
		if err := rows.Scan(&row.Month, &row.SaleCount, &row.CoinSales, &row.SalesAmount, &row.PayToClowee); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// FranchiseProfit summarises every franchise over an inclusive range. The
// net position is what the franchise still owes Clowee after payments.
func (r *Repository) FranchiseProfit(ctx context.Context, fromDate, toDate time.Time) ([]FranchiseProfitRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT f.id, f.name,
COALESCE(s.sales_amount, 0), COALESCE(s.clowee_profit, 0), COALESCE(s.franchise_profit, 0),
COALESCE(s.pay_to_clowee, 0), COALESCE(p.total_paid, 0), COALESCE(e.expenses, 0)
FROM franchises f
LEFT JOIN (
    SELECT franchise_id, SUM(sales_amount) AS sales_amount, SUM(clowee_profit) AS clowee_profit,
           SUM(franchise_profit) AS franchise_profit, SUM(pay_to_clowee) AS pay_to_clowee
    FROM machine_sales WHERE sales_date BETWEEN $1 AND $2 GROUP BY franchise_id
) s ON s.franchise_id = f.id
LEFT JOIN (
    SELECT franchise_id, SUM(amount) AS total_paid
    FROM machine_payments WHERE payment_date BETWEEN $1 AND $2 GROUP BY franchise_id
) p ON p.franchise_id = f.id
LEFT JOIN (
    SELECT franchise_id, SUM(amount) AS expenses
    FROM machine_expenses WHERE expense_date BETWEEN $1 AND $2 GROUP BY franchise_id
) e ON e.franchise_id = f.id
ORDER BY f.name`, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FranchiseProfitRow
	for rows.Next() {
		var row FranchiseProfitRow
		if err := rows.Scan(&row.FranchiseID, &row.FranchiseName, &row.SalesAmount, &row.CloweeProfit,
			&row.FranchiseProfit, &row.PayToClowee, &row.TotalPaid, &row.Expenses); err != nil {
			return nil, err
		}
		row.NetPosition = row.PayToClowee - row.TotalPaid
		out = append(out, row)
	}
	return out, rows.Err()
}

// MachineRanking orders machines by sales amount over an inclusive range.
func (r *Repository) MachineRanking(ctx context.Context, fromDate, toDate time.Time) ([]MachineRankRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT m.id, m.name, f.name, COUNT(s.id),
COALESCE(SUM(s.coin_sales + s.coin_adjustment), 0), COALESCE(SUM(s.sales_amount), 0)
FROM machines m
JOIN franchises f ON f.id = m.franchise_id
LEFT JOIN machine_sales s ON s.machine_id = m.id AND s.sales_date BETWEEN $1 AND $2
GROUP BY m.id, m.name, f.name
ORDER BY COALESCE(SUM(s.sales_amount), 0) DESC, m.name`, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MachineRankRow
	for rows.Next() {
		var row MachineRankRow
		if err := rows.Scan(&row.MachineID, &row.MachineName, &row.FranchiseName,
			&row.SaleCount, &row.CoinSales, &row.SalesAmount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// saleBalance is the per-sale figure the status breakdown classifies.
type saleBalance struct {
	payToClowee float64
	totalPaid   float64
}

// PaymentStatusBreakdown classifies every sale through the reconciler and
// counts per status, so the dashboard figure always agrees with the invoice
// views.
func (r *Repository) PaymentStatusBreakdown(ctx context.Context) ([]StatusBreakdownRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT s.pay_to_clowee, COALESCE(p.total_paid, 0)
FROM machine_sales s
LEFT JOIN (
    SELECT sale_id, SUM(amount) AS total_paid FROM machine_payments GROUP BY sale_id
) p ON p.sale_id = s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []saleBalance
	for rows.Next() {
		var b saleBalance
		if err := rows.Scan(&b.payToClowee, &b.totalPaid); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make(map[settlement.PaymentStatus]*StatusBreakdownRow, 4)
	order := []settlement.PaymentStatus{settlement.StatusDue, settlement.StatusPartial, settlement.StatusPaid, settlement.StatusOverpaid}
	for _, status := range order {
		counts[status] = &StatusBreakdownRow{Status: string(status)}
	}
	for _, b := range balances {
		var payments []settlement.Payment
		if b.totalPaid != 0 {
			payments = []settlement.Payment{{Amount: b.totalPaid}}
		}
		rec := settlement.Reconcile(b.payToClowee, payments)
		row := counts[rec.Status]
		row.Count++
		row.Balance += rec.Balance
	}

	out := make([]StatusBreakdownRow, 0, len(order))
	for _, status := range order {
		out = append(out, *counts[status])
	}
	return out, nil
}
