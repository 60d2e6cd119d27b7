package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/forecourt-hq/forecourt/internal/ap"
	"github.com/forecourt-hq/forecourt/internal/ar"
	"github.com/forecourt-hq/forecourt/internal/app"
	"github.com/forecourt-hq/forecourt/internal/inventory"
	"github.com/forecourt-hq/forecourt/internal/platform/cache"
	"github.com/forecourt-hq/forecourt/internal/platform/db"
	"github.com/forecourt-hq/forecourt/internal/pos"
	"github.com/forecourt-hq/forecourt/internal/reports"
	"github.com/forecourt-hq/forecourt/jobs"
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

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	arService := ar.NewService(ar.NewRepository(pool), reportCache)
	apService := ap.NewService(ap.NewRepository(pool), reportCache)
	inventoryService := inventory.NewService(inventory.NewRepository(pool), nil)
	posRepo := pos.NewRepository(pool)

	reportsService := reports.NewService(arService, apService, posRepo, inventoryService, reportCache, nil)

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

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportsWarmup, Handler: jobs.NewReportsWarmupHandler(logger, reportsService)},
			{Type: jobs.TaskTanksScan, Handler: jobs.NewTanksScanHandler(jobs.TankScanConfig{
				Logger:  logger,
				Tanks:   inventoryService,
				Client:  jobsClient,
				AlertTo: cfg.SMTPFrom,
			})},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: jobs.NewReportsWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 * * * *", Task: jobs.NewTanksScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
