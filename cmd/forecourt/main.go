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

	"github.com/forecourt-hq/forecourt/internal/ap"
	"github.com/forecourt-hq/forecourt/internal/ar"
	"github.com/forecourt-hq/forecourt/internal/app"
	"github.com/forecourt-hq/forecourt/internal/auth"
	"github.com/forecourt-hq/forecourt/internal/customers"
	"github.com/forecourt-hq/forecourt/internal/expenses"
	"github.com/forecourt-hq/forecourt/internal/inventory"
	"github.com/forecourt-hq/forecourt/internal/observability"
	"github.com/forecourt-hq/forecourt/internal/platform/cache"
	"github.com/forecourt-hq/forecourt/internal/platform/db"
	"github.com/forecourt-hq/forecourt/internal/pos"
	"github.com/forecourt-hq/forecourt/internal/reports"
	"github.com/forecourt-hq/forecourt/internal/settings"
	"github.com/forecourt-hq/forecourt/internal/shared"
	"github.com/forecourt-hq/forecourt/internal/suppliers"
	"github.com/forecourt-hq/forecourt/internal/users"
	"github.com/forecourt-hq/forecourt/jobs"
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

	sessionManager := shared.NewSessionManager(redisClient, "forecourt_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)
	authMiddleware := auth.Middleware{Logger: logger}

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditLogger)
	usersHandler := users.NewHandler(logger, usersService)

	customersRepo := customers.NewRepository(pool)
	customersHandler := customers.NewHandler(logger, customersRepo)
	suppliersRepo := suppliers.NewRepository(pool)
	suppliersHandler := suppliers.NewHandler(logger, suppliersRepo)

	settingsRepo := settings.NewRepository(pool)
	settingsHandler := settings.NewHandler(logger, settingsRepo)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	arRepo := ar.NewRepository(pool)
	arService := ar.NewService(arRepo, reportCache)
	arHandler := ar.NewHandler(logger, arService)

	apRepo := ap.NewRepository(pool)
	apService := ap.NewService(apRepo, reportCache)
	apHandler := ap.NewHandler(logger, apService)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, app.DeliveryBiller{
		Bills:     apService,
		Suppliers: suppliersRepo,
		Settings:  settingsRepo,
	})
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	posRepo := pos.NewRepository(pool)
	posService := pos.NewService(posRepo, settingsRepo, app.CreditSaleInvoicer{
		Invoices:  arService,
		Customers: customersRepo,
	}, inventoryService)
	posHandler := pos.NewHandler(logger, posService)

	expensesRepo := expenses.NewRepository(pool)
	expensesService := expenses.NewService(expensesRepo)
	expensesHandler := expenses.NewHandler(logger, expensesService)

	reportsService := reports.NewService(arService, apService, posService, inventoryService, reportCache, metrics)
	reportsHandler := reports.NewHandler(logger, reportsService)

	jobsInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsInspector.Close(); err != nil {
			logger.Warn("jobs inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(jobsInspector, logger)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("init jobs client", slog.Any("error", err))
	} else {
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		if _, err := jobsClient.EnqueueReportsWarmup(ctx); err != nil {
			logger.Warn("enqueue startup warmup", slog.Any("error", err))
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthMiddleware:   authMiddleware,
		AuthHandler:      authHandler,
		UsersHandler:     usersHandler,
		CustomersHandler: customersHandler,
		SuppliersHandler: suppliersHandler,
		POSHandler:       posHandler,
		InventoryHandler: inventoryHandler,
		ARHandler:        arHandler,
		APHandler:        apHandler,
		ExpensesHandler:  expensesHandler,
		ReportsHandler:   reportsHandler,
		SettingsHandler:  settingsHandler,
		JobsHandler:      jobsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
