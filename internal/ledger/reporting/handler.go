package reporting

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/santri-erp/santri-erp/internal/platform/httpx"
)

// Handler exposes the read-only projections.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers /reports routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.accounts)
	r.Get("/products", h.products)
	r.Get("/chart-of-accounts", h.chartOfAccounts)
	r.Get("/transaction-types", h.transactionTypes)
}

func (h *Handler) accounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := AccountFilter{Status: q.Get("status")}
	if raw := q.Get("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.BadRequest(w, "invalid product_id")
			return
		}
		filter.ProductID = &id
	}
	rows, err := h.service.Accounts(r.Context(), filter)
	h.respond(w, rows, err)
}

func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Products(r.Context())
	h.respond(w, rows, err)
}

func (h *Handler) chartOfAccounts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ChartOfAccounts(r.Context())
	h.respond(w, rows, err)
}

func (h *Handler) transactionTypes(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.TransactionTypes(r.Context())
	h.respond(w, rows, err)
}

func (h *Handler) respond(w http.ResponseWriter, rows any, err error) {
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Data(w, http.StatusOK, rows)
}
