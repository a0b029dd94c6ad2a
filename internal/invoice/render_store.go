package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoRender indicates no prerendered PDF exists for the sale.
var ErrNoRender = errors.New("invoice: no prerendered copy")

// RenderStore caches prerendered invoice PDFs keyed by sale. The background
// prerender job writes them; the download endpoint serves them when present.
type RenderStore struct {
	pool *pgxpool.Pool
}

// NewRenderStore constructs a RenderStore.
func NewRenderStore(pool *pgxpool.Pool) *RenderStore {
	return &RenderStore{pool: pool}
}

// Get returns the prerendered PDF for a sale.
func (s *RenderStore) Get(ctx context.Context, saleID int64) ([]byte, time.Time, error) {
	var (
		pdf        []byte
		renderedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT pdf, rendered_at FROM invoice_renders WHERE sale_id = $1`, saleID,
	).Scan(&pdf, &renderedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, ErrNoRender
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return pdf, renderedAt, nil
}

// Put stores or refreshes a render.
func (s *RenderStore) Put(ctx context.Context, saleID int64, pdf []byte) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO invoice_renders (sale_id, pdf, rendered_at)
VALUES ($1, $2, NOW())
ON CONFLICT (sale_id) DO UPDATE SET pdf = EXCLUDED.pdf, rendered_at = NOW()`, saleID, pdf)
	return err
}
