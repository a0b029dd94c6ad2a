package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clowee-erp/clowee-erp/internal/platform/db"
)

// ErrNotFound indicates the item does not exist.
var ErrNotFound = errors.New("inventory: not found")

// ErrDuplicateSKU indicates the SKU is already registered.
var ErrDuplicateSKU = errors.New("inventory: sku already exists")

// Repository provides PostgreSQL backed persistence for stock.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, name, sku, unit_cost, is_active, created_at, updated_at`

func scanItem(row pgx.Row) (*StockItem, error) {
	var it StockItem
	err := row.Scan(&it.ID, &it.Name, &it.SKU, &it.UnitCost, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// GetItem fetches an item by id.
func (r *Repository) GetItem(ctx context.Context, id int64) (*StockItem, error) {
	return scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM stock_items WHERE id = $1`, id))
}

// ListItems returns all items by name.
func (r *Repository) ListItems(ctx context.Context, activeOnly bool) ([]StockItem, error) {
	query := `SELECT ` + itemColumns + ` FROM stock_items`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// CreateItem inserts an item.
func (r *Repository) CreateItem(ctx context.Context, it StockItem) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO stock_items (name, sku, unit_cost, is_active, created_at, updated_at)
VALUES ($1,$2,$3,TRUE,NOW(),NOW()) RETURNING id`, it.Name, it.SKU, it.UnitCost).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateSKU
		}
		return 0, err
	}
	return id, nil
}

// UpdateItem applies a column update map.
func (r *Repository) UpdateItem(ctx context.Context, id int64, updates map[string]any) error {
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
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE stock_items SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMovement appends a movement.
func (r *Repository) AddMovement(ctx context.Context, m Movement) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO stock_movements
(item_id, movement_type, quantity, reference, movement_date, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW()) RETURNING id`,
		m.ItemID, m.MovementType, m.Quantity, m.Reference, m.MovementDate, m.CreatedBy).Scan(&id)
	return id, err
}

// ListMovements returns an item's movements, newest first, with the total
// count.
func (r *Repository) ListMovements(ctx context.Context, itemID int64, page, perPage int) ([]Movement, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE item_id = $1`, itemID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, item_id, movement_type, quantity, reference,
movement_date, created_by, created_at
FROM stock_movements WHERE item_id = $1 ORDER BY movement_date DESC, id DESC LIMIT $2 OFFSET $3`,
		itemID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.MovementType, &m.Quantity, &m.Reference,
			&m.MovementDate, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// OnHand sums an item's movements.
func (r *Repository) OnHand(ctx context.Context, itemID int64) (float64, error) {
	var onHand float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE item_id = $1`, itemID).Scan(&onHand)
	return onHand, err
}

// RecordStockOut writes the stock-out history entry and the matching outbound
// movement in one transaction.
func (r *Repository) RecordStockOut(ctx context.Context, e StockOutEntry, createdBy int64) (*StockOutEntry, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO stock_out_history
(item_id, machine_id, sale_id, quantity, out_date, created_at)
VALUES ($1,$2,$3,$4,$5,NOW()) RETURNING id, created_at`,
			e.ItemID, e.MachineID, e.SaleID, e.Quantity, e.OutDate).Scan(&e.ID, &e.CreatedAt); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `INSERT INTO stock_movements
(item_id, movement_type, quantity, reference, movement_date, created_by, created_at)
VALUES ($1,'out',$2,$3,$4,$5,NOW())`,
			e.ItemID, -e.Quantity, fmt.Sprintf("prize out, sale %d", e.SaleID), e.OutDate, createdBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListStockOuts returns the stock-out history for one machine, newest first.
func (r *Repository) ListStockOuts(ctx context.Context, machineID int64) ([]StockOutEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, item_id, machine_id, sale_id, quantity, out_date, created_at
FROM stock_out_history WHERE machine_id = $1 ORDER BY out_date DESC, id DESC`, machineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockOutEntry
	for rows.Next() {
		var e StockOutEntry
		if err := rows.Scan(&e.ID, &e.ItemID, &e.MachineID, &e.SaleID, &e.Quantity, &e.OutDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
