package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clowee-erp/clowee-erp/internal/app"
	"github.com/clowee-erp/clowee-erp/internal/currency"
	"github.com/clowee-erp/clowee-erp/internal/franchise"
	"github.com/clowee-erp/clowee-erp/internal/invoice"
	"github.com/clowee-erp/clowee-erp/internal/machine"
	"github.com/clowee-erp/clowee-erp/internal/payment"
	"github.com/clowee-erp/clowee-erp/internal/platform/cache"
	"github.com/clowee-erp/clowee-erp/internal/platform/db"
	"github.com/clowee-erp/clowee-erp/internal/reports"
	"github.com/clowee-erp/clowee-erp/internal/sales"
	"github.com/clowee-erp/clowee-erp/internal/shared"
	"github.com/clowee-erp/clowee-erp/jobs"
	"github.com/clowee-erp/clowee-erp/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	franchiseRepo := franchise.NewRepository(pool)
	franchiseService := franchise.NewService(franchiseRepo, auditLogger, logger)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, reportCache)

	salesRepo := sales.NewRepository(pool)
	machineRepo := machine.NewRepository(pool)
	paymentRepo := payment.NewRepository(pool)
	moneyFormatter := currency.NewFormatter(cfg.CurrencyLocale, cfg.CurrencySymbol)
	invoiceService := invoice.NewService(salesRepo, franchiseRepo, machineRepo, paymentRepo, moneyFormatter)
	pdfClient := report.NewClient(cfg.GotenbergURL)

	integrityJob := jobs.NewSettlementIntegrityJob(pool, franchiseService, logger)
	warmupJob := jobs.NewReportWarmupJob(reportsService, logger)
	prerenderJob := jobs.NewInvoicePrerenderJob(invoiceService, pdfClient, invoice.NewRenderStore(pool), logger)

	// Drop cached report keys whenever another process bumps the version.
	go func() {
		if err := reportCache.ListenForInvalidation(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("report cache listener stopped", slog.Any("error", err))
		}
	}()

	// Sweep stale idempotency keys once a day.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := idempotencyStore.Cleanup(ctx, 30*24*time.Hour); err != nil {
					logger.Warn("idempotency cleanup", slog.Any("error", err))
				}
			}
		}
	}()

	integrityTask, err := jobs.NewSettlementIntegrityTask(jobs.SettlementIntegrityPayload{})
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewReportWarmupTask()
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSettlementIntegrity, Handler: integrityJob.Handle},
			{Type: jobs.TaskReportWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskInvoicePrerender, Handler: prerenderJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
