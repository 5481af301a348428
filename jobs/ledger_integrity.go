package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/santri-erp/santri-erp/internal/jobs"
	"github.com/santri-erp/santri-erp/internal/ledger/postings"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// IntegrityChecker lists accounts whose stored balance disagrees with the ledger.
type IntegrityChecker interface {
	CheckIntegrity(ctx context.Context) ([]postings.Drift, error)
}

// LedgerIntegrityJob reports balance drift between accounts and ledger entries.
// Drift is logged and counted, never corrected.
type LedgerIntegrityJob struct {
	Checker IntegrityChecker
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewLedgerIntegrityJob wires dependencies for the integrity handler.
func NewLedgerIntegrityJob(checker IntegrityChecker, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{
		Checker: checker,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes ledger integrity tasks.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Checker == nil {
		return errors.New("ledger integrity: handler not configured")
	}
	var payload IntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Trigger == "" {
		payload.Trigger = "cron"
	}

	tracker := j.metrics().Track(TaskLedgerIntegrity)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("trigger", payload.Trigger))
	start := j.now()
	logger.Info("starting ledger integrity check")

	drifts, err := j.Checker.CheckIntegrity(ctx)
	if err != nil {
		resultErr = err
		logger.Error("check ledger integrity", slog.Any("error", err))
		return resultErr
	}
	for _, d := range drifts {
		logger.Warn("account balance drift",
			slog.String("account_number", d.AccountNumber),
			slog.String("balance", d.Balance.StringFixed(2)),
			slog.String("ledger_balance", d.LedgerBalance.StringFixed(2)),
		)
	}
	j.metrics().AddDrift(len(drifts))

	logger.Info("completed ledger integrity check", slog.Int("drifted", len(drifts)), slog.Duration("duration", j.now().Sub(start)))
	return resultErr
}

func (j *LedgerIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLedgerIntegrity))
	}
	return slog.Default().With(slog.String("job", TaskLedgerIntegrity))
}

func (j *LedgerIntegrityJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *LedgerIntegrityJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
