package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clowee-erp/clowee-erp/internal/reports"
)

// ReportWarmupJob precomputes the dashboard report caches so the first
// request after an invalidation does not pay the aggregation cost.
type ReportWarmupJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(reportsSvc *reports.Service, logger *slog.Logger) *ReportWarmupJob {
	return &ReportWarmupJob{
		Reports: reportsSvc,
		Logger:  logger,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	logger := j.logger()
	now := j.clock()

	if err := j.Reports.Warm(ctx, now); err != nil {
		logger.Error("report warmup failed", slog.Any("error", err))
		return err
	}
	logger.Info("report caches warmed", slog.Duration("duration", time.Since(now)))
	return nil
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}
