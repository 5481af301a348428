package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/santri-erp/santri-erp/internal/app"
	"github.com/santri-erp/santri-erp/internal/ledger/coa"
	"github.com/santri-erp/santri-erp/internal/ledger/postings"
	"github.com/santri-erp/santri-erp/internal/ledger/reporting"
	"github.com/santri-erp/santri-erp/internal/ledger/txtypes"
	"github.com/santri-erp/santri-erp/internal/platform/cache"
	"github.com/santri-erp/santri-erp/internal/platform/db"
	"github.com/santri-erp/santri-erp/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	coaService := coa.NewService(coa.NewRepository(pool), nil, nil)
	txTypeService := txtypes.NewService(txtypes.NewRepository(pool), coaService, txtypes.Options{StrictCOA: cfg.TxTypeStrictCOA}, logger, nil, nil)
	ledger := postings.NewService(postings.NewRepository(pool), txTypeService, coaService, nil, nil, nil)
	reports := reporting.NewService(reporting.NewRepository(pool), cache.NewVersioned(redisClient, cfg.CacheTTL))

	integrityJob := jobs.NewLedgerIntegrityJob(ledger, logger, nil)
	warmupJob := jobs.NewCacheWarmupJob(reports, logger, nil)

	integrityTask, err := jobs.NewLedgerIntegrityTask("cron")
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewLedgerCacheWarmupTask("cron")
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerIntegrity, Handler: integrityJob.Handle},
			{Type: jobs.TaskLedgerCacheWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.IntegrityCron, Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.Int("concurrency", cfg.WorkerConcurrency))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
