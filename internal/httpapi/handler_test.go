package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/order-entry/internal/domain/customer"
	"github.com/xenking/order-entry/internal/domain/order"
	"github.com/xenking/order-entry/internal/domain/product"
	"github.com/xenking/order-entry/internal/domain/tax"
)

// --- Mock implementations ---

type mockProductRepo struct {
	products []product.Product
	outOf    map[string]bool
	listErr  error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return m.products, m.listErr
}

func (m *mockProductRepo) GetBySKU(_ context.Context, sku string) (*product.Product, error) {
	for i := range m.products {
		if m.products[i].SKU == sku {
			return &m.products[i], nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) IsInStock(_ context.Context, sku string) (bool, error) {
	return !m.outOf[sku], nil
}

type mockCustomers struct {
	cust *customer.Customer
	err  error
}

func (m *mockCustomers) Get(_ context.Context, _ int64) (*customer.Customer, error) {
	return m.cust, m.err
}

type mockFulfiller struct {
	conf *order.Confirmation
	err  error
}

func (m *mockFulfiller) Fulfill(_ context.Context, _ *order.Order) (*order.Confirmation, error) {
	return m.conf, m.err
}

type mockTaxes struct {
	entries []tax.Entry
}

func (m *mockTaxes) Entries(_ context.Context, _, _ string) ([]tax.Entry, error) {
	return m.entries, nil
}

type mockNotifier struct {
	calls int
}

func (m *mockNotifier) SendOrderConfirmation(_ context.Context, _, _ int64) error {
	m.calls++
	return nil
}

// --- Helpers ---

func newTestHandler(repo *mockProductRepo) (*Handler, *mockNotifier) {
	notifier := &mockNotifier{}
	svc := order.NewService(
		repo,
		&mockCustomers{cust: &customer.Customer{ID: 1, PostalCode: "98101", Country: "US"}},
		&mockFulfiller{conf: &order.Confirmation{OrderID: 2, OrderNumber: "1337", CustomerID: 1}},
		&mockTaxes{entries: []tax.Entry{
			{Description: "State Tax", Rate: decimal.RequireFromString("5.6")},
			{Description: "Federal Tax", Rate: decimal.RequireFromString("8.2")},
		}},
		notifier,
	)
	return NewHandler(repo, svc), notifier
}

func doRequest(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

const validOrderBody = `{
	"customerId": 1,
	"items": [
		{"quantity": 2, "product": {"sku": "1", "name": "a", "price": "43.50"}},
		{"quantity": 2.5, "product": {"sku": "2", "name": "b", "price": "1.20"}}
	]
}`

// --- Tests ---

func TestPlaceOrder_Created(t *testing.T) {
	h, notifier := newTestHandler(&mockProductRepo{})

	rec := doRequest(t, h, http.MethodPost, "/api/order", validOrderBody)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.OrderID)
	assert.Equal(t, "1337", resp.OrderNumber)
	assert.Equal(t, int64(1), resp.CustomerID)
	assert.InDelta(t, 90.00, resp.NetTotal, 1e-9)
	assert.InDelta(t, 1242.00, resp.Total, 1e-9)
	assert.Len(t, resp.Taxes, 2)
	assert.Len(t, resp.Items, 2)
	assert.NotEmpty(t, resp.EstimatedDelivery)
	assert.Equal(t, 1, notifier.calls)
}

func TestPlaceOrder_ValidationFailure(t *testing.T) {
	h, notifier := newTestHandler(&mockProductRepo{outOf: map[string]bool{"1": true}})

	body := `{
		"customerId": 1,
		"items": [
			{"quantity": 1, "product": {"sku": "1", "price": "1.00"}},
			{"quantity": 1, "product": {"sku": "1", "price": "2.00"}}
		]
	}`
	rec := doRequest(t, h, http.MethodPost, "/api/order", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Violations, 2)
	assert.Equal(t, "A product is out of stock", resp.Violations[0].Message)
	assert.Equal(t, "Products are not unique", resp.Violations[1].Message)
	assert.Zero(t, notifier.calls)
}

func TestPlaceOrder_MissingCustomerID(t *testing.T) {
	h, _ := newTestHandler(&mockProductRepo{})

	body := `{"items": [{"quantity": 1, "product": {"sku": "1", "price": "1.00"}}]}`
	rec := doRequest(t, h, http.MethodPost, "/api/order", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "customer ID")
}

func TestPlaceOrder_UnknownCustomer(t *testing.T) {
	repo := &mockProductRepo{}
	notifier := &mockNotifier{}
	svc := order.NewService(
		repo,
		&mockCustomers{err: customer.ErrNotFound},
		&mockFulfiller{},
		&mockTaxes{},
		notifier,
	)
	h := NewHandler(repo, svc)

	rec := doRequest(t, h, http.MethodPost, "/api/order", validOrderBody)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceOrder_InvalidBody(t *testing.T) {
	h, _ := newTestHandler(&mockProductRepo{})

	rec := doRequest(t, h, http.MethodPost, "/api/order", `{"items": [`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreflight(t *testing.T) {
	h, notifier := newTestHandler(&mockProductRepo{outOf: map[string]bool{"2": true}})

	body := `{
		"items": [
			{"quantity": 1, "product": {"sku": "1", "price": "1.00"}},
			{"quantity": 1, "product": {"sku": "2", "price": "2.00"}}
		]
	}`
	rec := doRequest(t, h, http.MethodPost, "/api/order/preflight", body)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp preflightResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.ProductsInStock)
	assert.True(t, resp.ProductsUnique)
	assert.Zero(t, notifier.calls, "preflight must not place the order")

	// Repeating the call yields the same answer.
	rec = doRequest(t, h, http.MethodPost, "/api/order/preflight", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var again preflightResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.Equal(t, resp, again)
}

func TestListProducts(t *testing.T) {
	h, _ := newTestHandler(&mockProductRepo{products: []product.Product{
		{SKU: "1-1989-5", Name: "Lamp", Price: decimal.RequireFromString("24.99")},
		{SKU: "1-1989-6", Name: "Fan", Price: decimal.RequireFromString("389.99")},
	}})

	rec := doRequest(t, h, http.MethodGet, "/api/product", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []productResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "Lamp", resp[0].Name)
	assert.InDelta(t, 24.99, resp[0].Price, 1e-9)
}

func TestGetProduct_NotFound(t *testing.T) {
	h, _ := newTestHandler(&mockProductRepo{})

	rec := doRequest(t, h, http.MethodGet, "/api/product/missing", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
}
