package accounts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santri-erp/santri-erp/internal/platform/httpx"
)

func newTestRouter(repo *memoryRepo) http.Handler {
	r := chi.NewRouter()
	r.Route("/account", NewHandler(nil, newTestService(repo)).MountRoutes)
	return r
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func problemDetail(t *testing.T, rec *httptest.ResponseRecorder) httpx.ProblemDetail {
	t.Helper()
	var p httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestHandlerOpenTwice(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	rec := serve(router, http.MethodPost, "/account", `{"customer_id":1,"product_id":10}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data Account `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "2024001", created.Data.Number)
	assert.Equal(t, StatusInactive, created.Data.Status)
	assert.True(t, created.Data.Balance.IsZero())

	rec = serve(router, http.MethodPost, "/account", `{"customer_id":1,"product_id":10}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Siswa sudah memiliki akun", problemDetail(t, rec).Detail)

	rec = serve(router, http.MethodPost, "/account", `{"product_id":10}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerDeleteWithBalance(t *testing.T) {
	repo := newMemoryRepo(account("2024001", 1, 1000, StatusActive))
	router := newTestRouter(repo)

	rec := serve(router, http.MethodDelete, "/account/2024001", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Tidak dapat menghapus akun dengan saldo aktif", problemDetail(t, rec).Detail)

	rec = serve(router, http.MethodGet, "/account/2024001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"balance":"1000"`)
}

func TestHandlerCloseWithBalance(t *testing.T) {
	router := newTestRouter(newMemoryRepo(account("2024001", 1, 1000, StatusActive)))

	rec := serve(router, http.MethodPut, "/account/2024001/status", `{"status":"TUTUP"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Tidak dapat mengubah status menjadi TUTUP dengan saldo aktif", problemDetail(t, rec).Detail)

	rec = serve(router, http.MethodPut, "/account/2024001/status", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerDeleteAtZero(t *testing.T) {
	repo := newMemoryRepo(account("2024001", 1, 0, StatusInactive))
	router := newTestRouter(repo)

	rec := serve(router, http.MethodDelete, "/account/2024001", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(router, http.MethodGet, "/account/2024001", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerUpdateAndList(t *testing.T) {
	repo := newMemoryRepo(account("2024001", 1, 0, StatusInactive))
	router := newTestRouter(repo)

	rec := serve(router, http.MethodPut, "/account/2024001", `{"status":"AKTIF","product_id":11}`)
	require.Equal(t, http.StatusOK, rec.Code)
	kept, _ := repo.snapshot("2024001")
	assert.Equal(t, StatusActive, kept.Status)
	assert.Equal(t, int64(11), kept.ProductID)

	rec = serve(router, http.MethodPut, "/account/9999", `{"status":"AKTIF"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, http.MethodGet, "/account?status=AKTIF", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Pagination.Total)

	rec = serve(router, http.MethodGet, "/account?product_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
