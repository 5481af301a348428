package products

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santri-erp/santri-erp/internal/platform/httpx"
	"github.com/santri-erp/santri-erp/internal/shared"
)

type memoryRepo struct {
	products map[int64]Product
	accounts map[int64]int
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: map[int64]Product{}, accounts: map[int64]int{}, nextID: 1}
}

func (m *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	var out []Product
	for id := int64(1); id < m.nextID; id++ {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, shared.NewNotFound("produk", strconv.FormatInt(id, 10))
	}
	return p, nil
}

func (m *memoryRepo) GetByCode(ctx context.Context, code string) (Product, error) {
	for _, p := range m.products {
		if p.Code == code {
			return p, nil
		}
	}
	return Product{}, shared.NewNotFound("produk", code)
}

func (m *memoryRepo) Create(ctx context.Context, product Product) (Product, error) {
	product.ID = m.nextID
	m.nextID++
	product.CreatedAt = time.Now()
	m.products[product.ID] = product
	return product, nil
}

func (m *memoryRepo) Update(ctx context.Context, id int64, product Product) (Product, error) {
	product.ID = id
	m.products[id] = product
	return product, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	delete(m.products, id)
	return nil
}

func (m *memoryRepo) CountAccounts(ctx context.Context, id int64) (int, error) {
	return m.accounts[id], nil
}

func tabungan() ProductForm {
	return ProductForm{
		Code:         "TAB-01",
		Name:         "Tabungan Santri",
		Type:         "SAVINGS",
		InterestRate: decimal.RequireFromString("0.5"),
		AdminFee:     decimal.NewFromInt(2000),
		OpeningFee:   decimal.NewFromInt(10000),
	}
}

func TestServiceCreateProduct(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	p, err := svc.Create(context.Background(), tabungan())
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.True(t, p.IsActive)
	assert.True(t, p.AdminFee.Equal(decimal.NewFromInt(2000)))

	_, err = svc.Create(context.Background(), tabungan())
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "product_code", ve.Fields[0].Field)
}

func TestServiceRejectsNegativeFees(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	form := tabungan()
	form.AdminFee = decimal.NewFromInt(-1)
	form.InterestRate = decimal.RequireFromString("-0.1")

	_, err := svc.Create(context.Background(), form)
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 2)
	assert.Equal(t, "interest_rate", ve.Fields[0].Field)
	assert.Equal(t, "admin_fee", ve.Fields[1].Field)
}

func TestServiceUpdateKeepsOwnCode(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	p, err := svc.Create(context.Background(), tabungan())
	require.NoError(t, err)

	form := tabungan()
	form.Name = "Tabungan Santri Reguler"
	updated, err := svc.Update(context.Background(), p.ID, form)
	require.NoError(t, err)
	assert.Equal(t, "Tabungan Santri Reguler", updated.Name)

	_, err = svc.Update(context.Background(), 99, form)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestServiceDeleteInUse(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	p, err := svc.Create(context.Background(), tabungan())
	require.NoError(t, err)

	repo.accounts[p.ID] = 3
	require.ErrorIs(t, svc.Delete(context.Background(), p.ID), ErrInUse)

	repo.accounts[p.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), p.ID))
	assert.Empty(t, repo.products)
}

func TestServiceRequireActive(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	form := tabungan()
	inactive := false
	form.IsActive = &inactive
	p, err := svc.Create(context.Background(), form)
	require.NoError(t, err)

	_, err = svc.RequireActive(context.Background(), p.ID)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestHandlerProductRoutes(t *testing.T) {
	router := chi.NewRouter()
	router.Route("/product", NewHandler(nil, NewService(newMemoryRepo(), nil, nil)).MountRoutes)

	body := `{"product_code":"TAB-02","product_name":"Tabungan Qurban","interest_rate":"0","admin_fee":"0","opening_fee":"5000"}`
	req := httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/product?page=1&limit=10", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.NotNil(t, list.Pagination)
	assert.Equal(t, 1, list.Pagination.Total)

	req = httptest.NewRequest(http.MethodGet, "/product/abc", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(`{"product_name":"x","admin_fee":"-5"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
