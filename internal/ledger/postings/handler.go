package postings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/santri-erp/santri-erp/internal/platform/httpx"
	"github.com/santri-erp/santri-erp/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the postings sub-resource on the /account router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{accountNumber}/postings", h.list)
	r.Post("/{accountNumber}/postings", h.post)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r.URL.Query())
	entries, total, err := h.service.ListEntries(r.Context(), chi.URLParam(r, "accountNumber"), filters)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	httpx.Page(w, entries, shared.NewPagination(filters.Page, filters.Limit, total))
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid JSON body")
		return
	}
	entry, err := h.service.Post(r.Context(), chi.URLParam(r, "accountNumber"), req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Data(w, http.StatusCreated, entry)
}
