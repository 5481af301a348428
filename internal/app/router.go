package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/santri-erp/santri-erp/internal/ledger/accounts"
	"github.com/santri-erp/santri-erp/internal/ledger/coa"
	"github.com/santri-erp/santri-erp/internal/ledger/postings"
	"github.com/santri-erp/santri-erp/internal/ledger/products"
	"github.com/santri-erp/santri-erp/internal/ledger/reporting"
	"github.com/santri-erp/santri-erp/internal/ledger/txtypes"
	"github.com/santri-erp/santri-erp/internal/observability"
	"github.com/santri-erp/santri-erp/internal/platform/httpx"
	"github.com/santri-erp/santri-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	COAHandler       *coa.Handler
	ProductHandler   *products.Handler
	AccountHandler   *accounts.Handler
	PostingHandler   *postings.Handler
	TxTypeHandler    *txtypes.Handler
	ReportingHandler *reporting.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.COAHandler != nil {
		r.Route("/chart-of-account", params.COAHandler.MountRoutes)
	}
	if params.ProductHandler != nil {
		r.Route("/product", params.ProductHandler.MountRoutes)
	}
	if params.AccountHandler != nil || params.PostingHandler != nil {
		r.Route("/account", func(r chi.Router) {
			if params.AccountHandler != nil {
				params.AccountHandler.MountRoutes(r)
			}
			if params.PostingHandler != nil {
				params.PostingHandler.MountRoutes(r)
			}
		})
	}
	if params.TxTypeHandler != nil {
		r.Route("/transaction-type", params.TxTypeHandler.MountRoutes)
	}
	if params.ReportingHandler != nil {
		r.Route("/reports", params.ReportingHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, http.StatusText(http.StatusNotFound), "route not found")
	})

	return r
}
