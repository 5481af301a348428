package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/santri-erp/santri-erp/internal/app"
	"github.com/santri-erp/santri-erp/internal/customers"
	"github.com/santri-erp/santri-erp/internal/ledger/accounts"
	"github.com/santri-erp/santri-erp/internal/ledger/coa"
	"github.com/santri-erp/santri-erp/internal/ledger/postings"
	"github.com/santri-erp/santri-erp/internal/ledger/products"
	"github.com/santri-erp/santri-erp/internal/ledger/reporting"
	"github.com/santri-erp/santri-erp/internal/ledger/txtypes"
	"github.com/santri-erp/santri-erp/internal/observability"
	"github.com/santri-erp/santri-erp/internal/platform/cache"
	"github.com/santri-erp/santri-erp/internal/platform/db"
	"github.com/santri-erp/santri-erp/internal/shared"
	"github.com/santri-erp/santri-erp/jobs"
)

func runServer(ctx context.Context) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		return err
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		return err
	}
	defer dbpool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, dbpool, logger); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			return err
		}
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	reportCache := cache.NewVersioned(redisClient, cfg.CacheTTL)
	if err := reportCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	coaService := coa.NewService(coa.NewRepository(dbpool), auditLogger, reportCache)
	productService := products.NewService(products.NewRepository(dbpool), auditLogger, reportCache)
	accountService := accounts.NewService(
		accounts.NewRepository(dbpool),
		customers.NewPostgresDirectory(dbpool),
		productService,
		auditLogger,
		reportCache,
	)
	txTypeService := txtypes.NewService(
		txtypes.NewRepository(dbpool),
		coaService,
		txtypes.Options{StrictCOA: cfg.TxTypeStrictCOA},
		logger,
		auditLogger,
		reportCache,
	)
	postingService := postings.NewService(postings.NewRepository(dbpool), txTypeService, coaService, metrics, auditLogger, reportCache)
	reportingService := reporting.NewService(reporting.NewRepository(dbpool), reportCache)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		return err
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Metrics:          metrics,
		COAHandler:       coa.NewHandler(logger, coaService),
		ProductHandler:   products.NewHandler(logger, productService),
		AccountHandler:   accounts.NewHandler(logger, accountService),
		PostingHandler:   postings.NewHandler(logger, postingService),
		TxTypeHandler:    txtypes.NewHandler(logger, txTypeService),
		ReportingHandler: reporting.NewHandler(logger, reportingService),
		JobHandler:       jobs.NewHandler(inspector, jobClient, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			logger.Error("http server", slog.Any("error", err))
			return err
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
		return err
	}
	return nil
}
