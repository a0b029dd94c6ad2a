package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// driftTolerance is the largest stored-vs-recomputed difference accepted
// before a sale is flagged.
const driftTolerance = 0.01

// TermsResolver resolves effective agreement terms for a franchise.
type TermsResolver interface {
	ResolveTerms(ctx context.Context, franchiseID int64, asOf time.Time) (settlement.AgreementTerms, error)
}

// SettlementIntegrityJob recomputes the cached settlement of every sale in
// range and warns when the stored figures have drifted, which points at a
// retroactive agreement edit or a manual database change.
type SettlementIntegrityJob struct {
	Pool     *pgxpool.Pool
	Resolver TermsResolver
	Logger   *slog.Logger
}

// NewSettlementIntegrityJob wires dependencies for the integrity handler.
func NewSettlementIntegrityJob(pool *pgxpool.Pool, resolver TermsResolver, logger *slog.Logger) *SettlementIntegrityJob {
	return &SettlementIntegrityJob{Pool: pool, Resolver: resolver, Logger: logger}
}

type integrityRow struct {
	ID               int64
	FranchiseID      int64
	InvoiceNumber    string
	SalesDate        time.Time
	CoinSales        float64
	PrizeOutQuantity float64
	CoinAdjustment   float64
	PrizeAdjustment  float64
	PayToClowee      float64
}

// Handle processes settlement integrity tasks.
func (j *SettlementIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil || j.Resolver == nil {
		return errors.New("settlement integrity: handler not configured")
	}
	var payload SettlementIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger()
	started := time.Now()
	rows, err := j.fetchRows(ctx, payload)
	if err != nil {
		logger.Error("load sales for scan", slog.Any("error", err))
		return err
	}

	flagged := 0
	for _, row := range rows {
		terms, err := j.Resolver.ResolveTerms(ctx, row.FranchiseID, row.SalesDate)
		if err != nil {
			logger.Warn("terms not resolvable during scan",
				slog.String("invoice", row.InvoiceNumber),
				slog.Int64("franchise_id", row.FranchiseID),
				slog.Any("error", err))
			continue
		}
		if drift, ok := settlementDrift(row, terms); !ok {
			flagged++
			logger.Warn("stored settlement drifted from recomputation",
				slog.String("invoice", row.InvoiceNumber),
				slog.Int64("sale_id", row.ID),
				slog.Float64("stored_pay_to_clowee", row.PayToClowee),
				slog.Float64("drift", drift))
		}
	}

	logger.Info("settlement integrity scan completed",
		slog.Int("scanned", len(rows)),
		slog.Int("flagged", flagged),
		slog.Duration("duration", time.Since(started)))
	return nil
}

// settlementDrift recomputes one sale and reports how far the stored
// pay-to-Clowee is from the recomputed value.
func settlementDrift(row integrityRow, terms settlement.AgreementTerms) (float64, bool) {
	recomputed := settlement.Calculate(settlement.Reading{
		CoinSales:        row.CoinSales + row.CoinAdjustment,
		PrizeOutQuantity: row.PrizeOutQuantity + row.PrizeAdjustment,
	}, terms)
	drift := math.Abs(recomputed.PayToClowee - row.PayToClowee)
	return drift, drift <= driftTolerance
}

func (j *SettlementIntegrityJob) fetchRows(ctx context.Context, payload SettlementIntegrityPayload) ([]integrityRow, error) {
	query := `SELECT id, franchise_id, invoice_number, sales_date, coin_sales, prize_out_quantity,
coin_adjustment, prize_adjustment, pay_to_clowee FROM machine_sales`
	args := []any{}
	if payload.From != "" && payload.To != "" {
		from, err := time.Parse(settlement.DateLayout, payload.From)
		if err != nil {
			return nil, err
		}
		to, err := time.Parse(settlement.DateLayout, payload.To)
		if err != nil {
			return nil, err
		}
		query += ` WHERE sales_date BETWEEN $1 AND $2`
		args = append(args, from, to)
	}
	query += ` ORDER BY id`

	rows, err := j.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []integrityRow
	for rows.Next() {
		var row integrityRow
		if err := rows.Scan(&row.ID, &row.FranchiseID, &row.InvoiceNumber, &row.SalesDate,
			&row.CoinSales, &row.PrizeOutQuantity, &row.CoinAdjustment, &row.PrizeAdjustment,
			&row.PayToClowee); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (j *SettlementIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSettlementIntegrity))
	}
	return slog.Default().With(slog.String("job", TaskSettlementIntegrity))
}
