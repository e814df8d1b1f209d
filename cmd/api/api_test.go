package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	catalogmem "storefront/pkg/catalog/memory"
	"storefront/pkg/checkout"
	checkoutmem "storefront/pkg/checkout/memory"
	"storefront/pkg/logger"
	"storefront/pkg/session"
)

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *memTokens) Set(_ context.Context, sid, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[sid] = username
	return nil
}

func (m *memTokens) Get(_ context.Context, sid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.tokens[sid]
	if !ok {
		return "", session.ErrNoSession
	}
	return u, nil
}

func (m *memTokens) Del(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, sid)
	return nil
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	log = logger.New(io.Discard, logger.LevelError, "test", nil)
	sessions = session.NewManager(&memTokens{tokens: make(map[string]string)}, cart.Pricing{ShippingCost: 5.99, TaxRate: 0.08})
	products = catalogmem.New([]catalog.Product{
		{ID: "1", Title: "Wireless Headphones", Price: 10, Category: "Electronics", Stock: 3},
		{ID: "2", Title: "Smart Watch", Price: 5, Category: "Electronics"},
	})
	orders = checkoutmem.New()
	placer = checkout.NewService(orders, log)

	r := mux.NewRouter()
	r.HandleFunc("/login", loginHandler).Methods(http.MethodPost)
	r.HandleFunc("/products", listProductsHandler).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", getProductHandler).Methods(http.MethodGet)
	r.HandleFunc("/categories", listCategoriesHandler).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(authMiddleware)
	authed.HandleFunc("/logout", logoutHandler).Methods(http.MethodPost)
	authed.HandleFunc("/cart", getCartHandler).Methods(http.MethodGet)
	authed.HandleFunc("/cart/items", addCartItemHandler).Methods(http.MethodPost)
	authed.HandleFunc("/cart/items/{productId}", updateCartItemHandler).Methods(http.MethodPut)
	authed.HandleFunc("/cart/items/{productId}", removeCartItemHandler).Methods(http.MethodDelete)
	authed.HandleFunc("/orders", placeOrderHandler).Methods(http.MethodPost)
	authed.HandleFunc("/orders", listOrdersHandler).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{id}", getOrderHandler).Methods(http.MethodGet)
	return r
}

func login(t *testing.T, r *mux.Router) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"ada","password":"pw"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func do(r *mux.Router, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCartRequiresSession(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartFlow(t *testing.T) {
	r := newTestRouter(t)
	c := login(t, r)

	// Empty at session start.
	resp := decodeCart(t, do(r, http.MethodGet, "/cart", "", c))
	assert.Equal(t, 0, resp.ItemCount)

	// Quantity defaults to 1 when omitted.
	w := do(r, http.MethodPost, "/cart/items", `{"productId":"2"}`, c)
	require.Equal(t, http.StatusCreated, w.Code)
	resp = decodeCart(t, w)
	assert.Equal(t, 1, resp.ItemCount)

	// Repeated add merges; stock bound of product 1 clamps 1+5 to 3.
	w = do(r, http.MethodPost, "/cart/items", `{"productId":"1","quantity":1}`, c)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(r, http.MethodPost, "/cart/items", `{"productId":"1","quantity":5}`, c)
	require.Equal(t, http.StatusCreated, w.Code)
	resp = decodeCart(t, w)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 3, resp.Items[1].Quantity)

	// Summary is consistent with contents: 5 + 3*10 = 35.
	assert.InDelta(t, 35.0, resp.Summary.Subtotal, 1e-9)
	assert.InDelta(t, 43.79, resp.Summary.Total, 1e-9)

	// Quantity 0 removes the line, same as delete.
	w = do(r, http.MethodPut, "/cart/items/1", `{"quantity":0}`, c)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeCart(t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "2", resp.Items[0].ProductID)

	// Deleting an absent product still succeeds.
	w = do(r, http.MethodDelete, "/cart/items/1", "", c)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAddCartItemErrors(t *testing.T) {
	r := newTestRouter(t)
	c := login(t, r)

	w := do(r, http.MethodPost, "/cart/items", `{"productId":"99"}`, c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/cart/items", `{"productId":"1","quantity":-2}`, c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/cart/items/99", `{"quantity":2}`, c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaceOrderClearsCart(t *testing.T) {
	r := newTestRouter(t)
	c := login(t, r)

	w := do(r, http.MethodPost, "/cart/items", `{"productId":"2","quantity":2}`, c)
	require.Equal(t, http.StatusCreated, w.Code)

	body := `{"customer":{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"},"paymentMethod":"credit-card"}`
	w = do(r, http.MethodPost, "/orders", body, c)
	require.Equal(t, http.StatusCreated, w.Code)

	var o checkout.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	assert.NotEmpty(t, o.ID)
	assert.InDelta(t, 5.99, o.ShippingCost, 1e-9)

	resp := decodeCart(t, do(r, http.MethodGet, "/cart", "", c))
	assert.Equal(t, 0, resp.ItemCount)

	w = do(r, http.MethodGet, "/orders/"+o.ID, "", c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlaceOrderEmptyCartRejected(t *testing.T) {
	r := newTestRouter(t)
	c := login(t, r)

	body := `{"customer":{"firstName":"Ada"},"paymentMethod":"credit-card"}`
	w := do(r, http.MethodPost, "/orders", body, c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutTearsDownCart(t *testing.T) {
	r := newTestRouter(t)
	c := login(t, r)

	w := do(r, http.MethodPost, "/cart/items", `{"productId":"2","quantity":2}`, c)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/logout", "", c)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/cart", "", c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/products?category=electronics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Products []catalog.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Products, 2)

	w = do(r, http.MethodGet, "/products/99", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/categories", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
