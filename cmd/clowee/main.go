package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clowee-erp/clowee-erp/internal/app"
	"github.com/clowee-erp/clowee-erp/internal/auth"
	"github.com/clowee-erp/clowee-erp/internal/bank"
	"github.com/clowee-erp/clowee-erp/internal/currency"
	"github.com/clowee-erp/clowee-erp/internal/expense"
	"github.com/clowee-erp/clowee-erp/internal/franchise"
	"github.com/clowee-erp/clowee-erp/internal/inventory"
	"github.com/clowee-erp/clowee-erp/internal/invoice"
	"github.com/clowee-erp/clowee-erp/internal/machine"
	"github.com/clowee-erp/clowee-erp/internal/payment"
	"github.com/clowee-erp/clowee-erp/internal/platform/cache"
	"github.com/clowee-erp/clowee-erp/internal/platform/db"
	"github.com/clowee-erp/clowee-erp/internal/rbac"
	"github.com/clowee-erp/clowee-erp/internal/reports"
	"github.com/clowee-erp/clowee-erp/internal/roles"
	"github.com/clowee-erp/clowee-erp/internal/sales"
	"github.com/clowee-erp/clowee-erp/internal/shared"
	"github.com/clowee-erp/clowee-erp/internal/users"
	"github.com/clowee-erp/clowee-erp/jobs"
	"github.com/clowee-erp/clowee-erp/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	sessionManager := shared.NewSessionManager(redisClient, "clowee_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	rbacRepo := rbac.NewRepository(pool)
	rbacService := rbac.NewService(rbacRepo)
	rbacMiddleware := rbac.Middleware{Source: rbacService, Logger: logger}
	if err := rbacService.EnsureCatalog(ctx); err != nil {
		logger.Warn("ensure permission catalog", slog.Any("error", err))
	}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, rbacService)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	franchiseRepo := franchise.NewRepository(pool)
	franchiseService := franchise.NewService(franchiseRepo, auditLogger, logger)
	franchiseHandler := franchise.NewHandler(logger, franchiseService, rbacMiddleware)

	machineRepo := machine.NewRepository(pool)
	machineService := machine.NewService(machineRepo, franchiseService)
	machineHandler := machine.NewHandler(logger, machineService, rbacMiddleware)

	salesRepo := sales.NewRepository(pool)
	paymentRepo := payment.NewRepository(pool)
	salesService := sales.NewService(salesRepo, machineService, franchiseService, paymentRepo, reportCache, jobsClient, auditLogger, logger)
	salesHandler := sales.NewHandler(logger, salesService, rbacMiddleware)

	paymentService := payment.NewService(paymentRepo, salesRepo, reportCache, jobsClient, idempotencyStore, auditLogger, logger)
	paymentHandler := payment.NewHandler(logger, paymentService, rbacMiddleware)

	bankRepo := bank.NewRepository(pool)
	bankService := bank.NewService(bankRepo, auditLogger, logger)
	bankHandler := bank.NewHandler(logger, bankService, rbacMiddleware)

	expenseRepo := expense.NewRepository(pool)
	expenseService := expense.NewService(expenseRepo, auditLogger, logger)
	expenseHandler := expense.NewHandler(logger, expenseService, rbacMiddleware)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, auditLogger, logger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, rbacMiddleware)

	moneyFormatter := currency.NewFormatter(cfg.CurrencyLocale, cfg.CurrencySymbol)
	invoiceService := invoice.NewService(salesRepo, franchiseRepo, machineRepo, paymentRepo, moneyFormatter)
	pdfClient := report.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg unreachable, pdf export degraded", slog.Any("error", err))
	}
	invoiceHandler := invoice.NewHandler(logger, invoiceService, pdfClient, invoice.NewRenderStore(pool), rbacMiddleware)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, reportCache)
	reportsHandler := reports.NewHandler(logger, reportsService, rbacMiddleware)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditLogger, logger)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo, auditLogger, logger)
	rolesHandler := roles.NewHandler(logger, rolesService, rbacMiddleware)

	rbacHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	jobsInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobsHandler := jobs.NewHandler(jobsInspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,

		AuthHandler:      authHandler,
		FranchiseHandler: franchiseHandler,
		MachineHandler:   machineHandler,
		SalesHandler:     salesHandler,
		PaymentHandler:   paymentHandler,
		BankHandler:      bankHandler,
		ExpenseHandler:   expenseHandler,
		InventoryHandler: inventoryHandler,
		InvoiceHandler:   invoiceHandler,
		ReportsHandler:   reportsHandler,
		UsersHandler:     usersHandler,
		RolesHandler:     rolesHandler,
		RBACHandler:      rbacHandler,
		JobsHandler:      jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
