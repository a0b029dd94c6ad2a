package machine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the machine or reading does not exist.
var ErrNotFound = errors.New("machine: not found")

// ErrDuplicateNumber indicates the machine number is already registered.
var ErrDuplicateNumber = errors.New("machine: number already exists")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const machineColumns = `id, franchise_id, name, number, installation_date, initial_coin_counter,
initial_prize_counter, is_active, created_at, updated_at`

func scanMachine(row pgx.Row) (*Machine, error) {
	var m Machine
	err := row.Scan(&m.ID, &m.FranchiseID, &m.Name, &m.Number, &m.InstallationDate,
		&m.InitialCoinCounter, &m.InitialPrizeCounter, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Get fetches a machine by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Machine, error) {
	return scanMachine(r.pool.QueryRow(ctx, `SELECT `+machineColumns+` FROM machines WHERE id = $1`, id))
}

// ListByFranchise returns the machines of one franchise.
func (r *Repository) ListByFranchise(ctx context.Context, franchiseID int64, activeOnly bool) ([]Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines WHERE franchise_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY number`
	rows, err := r.pool.Query(ctx, query, franchiseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Machine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Create inserts a machine and returns its id.
func (r *Repository) Create(ctx context.Context, m Machine) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO machines
(franchise_id, name, number, installation_date, initial_coin_counter, initial_prize_counter,
 is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,TRUE,NOW(),NOW()) RETURNING id`,
		m.FranchiseID, m.Name, m.Number, m.InstallationDate, m.InitialCoinCounter, m.InitialPrizeCounter).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateNumber
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
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE machines SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddReading appends a counter reading.
func (r *Repository) AddReading(ctx context.Context, reading CounterReading) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO machine_counter_readings
(machine_id, reading_date, coin_counter, prize_counter, notes, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW()) RETURNING id`,
		reading.MachineID, reading.ReadingDate, reading.CoinCounter, reading.PrizeCounter,
		reading.Notes, reading.CreatedBy).Scan(&id)
	return id, err
}

// ListReadings returns stored readings for a machine, oldest first.
func (r *Repository) ListReadings(ctx context.Context, machineID int64) ([]CounterReading, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, machine_id, reading_date, coin_counter, prize_counter,
notes, created_by, created_at
FROM machine_counter_readings WHERE machine_id = $1 ORDER BY reading_date, id`, machineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CounterReading
	for rows.Next() {
		var c CounterReading
		if err := rows.Scan(&c.ID, &c.MachineID, &c.ReadingDate, &c.CoinCounter, &c.PrizeCounter,
			&c.Notes, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LatestReading returns the most recent stored reading, or ErrNotFound.
func (r *Repository) LatestReading(ctx context.Context, machineID int64) (*CounterReading, error) {
	var c CounterReading
	err := r.pool.QueryRow(ctx, `SELECT id, machine_id, reading_date, coin_counter, prize_counter,
notes, created_by, created_at
FROM machine_counter_readings WHERE machine_id = $1 ORDER BY reading_date DESC, id DESC LIMIT 1`, machineID).
		Scan(&c.ID, &c.MachineID, &c.ReadingDate, &c.CoinCounter, &c.PrizeCounter, &c.Notes, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
