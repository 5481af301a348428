package jobs

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/santri-erp/santri-erp/internal/platform/httpx"
)

// Enqueuer submits ledger maintenance tasks on demand.
type Enqueuer interface {
	EnqueueIntegrity(ctx context.Context, trigger string) (*asynq.TaskInfo, error)
	EnqueueWarmup(ctx context.Context, trigger string) (*asynq.TaskInfo, error)
}

// QueueInspector reports queue depth.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// Handler exposes HTTP endpoints for job observability.
type Handler struct {
	inspector QueueInspector
	enqueuer  Enqueuer
	logger    *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints. Either dependency
// may be nil when Redis is unavailable.
func NewHandler(inspector QueueInspector, enqueuer Enqueuer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{inspector: inspector, enqueuer: enqueuer, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Post("/integrity", h.trigger(TaskLedgerIntegrity))
	r.Post("/warmup", h.trigger(TaskLedgerCacheWarmup))
}

type queueHealth struct {
	Queue   string `json:"queue"`
	Pending int    `json:"pending"`
}

type enqueued struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Queue string `json:"queue"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.inspector == nil {
		httpx.JSON(w, http.StatusOK, queueHealth{Queue: QueueDefault})
		return
	}
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), "queue unavailable")
		return
	}
	out := queueHealth{Queue: QueueDefault}
	if info != nil {
		out.Pending = info.Pending
		out.Queue = info.Queue
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) trigger(taskType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.enqueuer == nil {
			httpx.Problem(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), "job queue not configured")
			return
		}
		var (
			info *asynq.TaskInfo
			err  error
		)
		switch taskType {
		case TaskLedgerIntegrity:
			info, err = h.enqueuer.EnqueueIntegrity(r.Context(), "http")
		default:
			info, err = h.enqueuer.EnqueueWarmup(r.Context(), "http")
		}
		if err != nil {
			httpx.RespondError(w, h.logger, err)
			return
		}
		out := enqueued{Type: taskType, Queue: QueueDefault}
		if info != nil {
			out.ID = info.ID
			out.Queue = info.Queue
		}
		httpx.Data(w, http.StatusAccepted, out)
	}
}
