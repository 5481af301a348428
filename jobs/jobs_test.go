package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/santri-erp/santri-erp/internal/jobs"
	"github.com/santri-erp/santri-erp/internal/ledger/postings"
)

type checkerStub struct {
	drifts []postings.Drift
	err    error
	calls  int
}

func (c *checkerStub) CheckIntegrity(ctx context.Context) ([]postings.Drift, error) {
	c.calls++
	return c.drifts, c.err
}

type warmerStub struct {
	err   error
	calls int
}

func (w *warmerStub) Warm(ctx context.Context) error {
	w.calls++
	return w.err
}

type enqueuerStub struct {
	types []string
}

func (e *enqueuerStub) EnqueueIntegrity(ctx context.Context, trigger string) (*asynq.TaskInfo, error) {
	e.types = append(e.types, TaskLedgerIntegrity)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault, Type: TaskLedgerIntegrity}, nil
}

func (e *enqueuerStub) EnqueueWarmup(ctx context.Context, trigger string) (*asynq.TaskInfo, error) {
	e.types = append(e.types, TaskLedgerCacheWarmup)
	return &asynq.TaskInfo{ID: "task-2", Queue: QueueDefault, Type: TaskLedgerCacheWarmup}, nil
}

func metricValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestLedgerIntegrityJobCountsDrift(t *testing.T) {
	reg := prometheus.NewRegistry()
	checker := &checkerStub{drifts: []postings.Drift{
		{AccountNumber: "2024001", Balance: decimal.NewFromInt(150000), LedgerBalance: decimal.NewFromInt(100000)},
		{AccountNumber: "2024002", Balance: decimal.Zero, LedgerBalance: decimal.NewFromInt(5000)},
	}}
	job := NewLedgerIntegrityJob(checker, nil, jobmetrics.NewMetrics(reg))

	task, err := NewLedgerIntegrityTask("test")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, 1, checker.calls)
	assert.Equal(t, float64(2), metricValue(t, reg, "santri_ledger_balance_drift_total", nil))
	assert.Equal(t, float64(1), metricValue(t, reg, "santri_jobs_total", map[string]string{"job": TaskLedgerIntegrity, "status": "success"}))
}

func TestLedgerIntegrityJobReportsFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	job := NewLedgerIntegrityJob(&checkerStub{err: errors.New("db down")}, nil, jobmetrics.NewMetrics(reg))

	task, err := NewLedgerIntegrityTask("")
	require.NoError(t, err)
	require.Error(t, job.Handle(context.Background(), task))

	assert.Equal(t, float64(1), metricValue(t, reg, "santri_jobs_failures_total", map[string]string{"job": TaskLedgerIntegrity}))
	assert.Zero(t, metricValue(t, reg, "santri_ledger_balance_drift_total", nil))
}

func TestLedgerIntegrityJobSkipsMalformedPayload(t *testing.T) {
	job := NewLedgerIntegrityJob(&checkerStub{}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), asynq.NewTask(TaskLedgerIntegrity, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	var unconfigured *LedgerIntegrityJob
	assert.Error(t, unconfigured.Handle(context.Background(), asynq.NewTask(TaskLedgerIntegrity, nil)))
}

func TestCacheWarmupJob(t *testing.T) {
	reg := prometheus.NewRegistry()
	warmer := &warmerStub{}
	job := NewCacheWarmupJob(warmer, nil, jobmetrics.NewMetrics(reg))

	task, err := NewLedgerCacheWarmupTask("cron")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, warmer.calls)

	warmer.err = errors.New("redis down")
	require.Error(t, job.Handle(context.Background(), task))
	assert.Equal(t, float64(1), metricValue(t, reg, "santri_jobs_failures_total", map[string]string{"job": TaskLedgerCacheWarmup}))
}

func TestTaskPayloads(t *testing.T) {
	task, err := NewLedgerIntegrityTask("http")
	require.NoError(t, err)
	assert.Equal(t, TaskLedgerIntegrity, task.Type())

	var payload IntegrityPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "http", payload.Trigger)
}

func TestHandlerTriggerEndpoints(t *testing.T) {
	enq := &enqueuerStub{}
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, enq, nil).MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/integrity", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body struct {
		Data enqueued `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "task-1", body.Data.ID)
	assert.Equal(t, TaskLedgerIntegrity, body.Data.Type)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/warmup", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{TaskLedgerIntegrity, TaskLedgerCacheWarmup}, enq.types)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())
}

func TestHandlerWithoutQueue(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, nil, nil).MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/integrity", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
