package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonminaichev/mediexpress/internal/cart"
	"github.com/antonminaichev/mediexpress/internal/catalog"
	"github.com/antonminaichev/mediexpress/internal/metrics"
	"github.com/antonminaichev/mediexpress/internal/order"
	"github.com/antonminaichev/mediexpress/internal/pricing"
	"github.com/antonminaichev/mediexpress/internal/storage/memory"
	ordertypes "github.com/antonminaichev/mediexpress/internal/types/order"
	"github.com/antonminaichev/mediexpress/internal/user"
)

func newTestRouter(t *testing.T, ping func(context.Context) error) http.Handler {
	t.Helper()
	st := memory.New()
	rec := metrics.NewRecorder()
	secret := []byte("test-secret")

	products := catalog.NewService(nil, catalog.Fallback, nil)
	orders := order.NewStore(st, order.WithObserver(rec))
	carts := cart.NewService(cart.NewRepository(st, nil), products, orders, pricing.DefaultUSDToINR, nil)

	return NewRouter(Deps{
		User:      user.NewHandler(user.NewService(st, secret, time.Hour)),
		Order:     order.NewHandler(orders, products, pricing.DefaultUSDToINR, time.Second, nil),
		Catalog:   catalog.NewHandler(products),
		Cart:      cart.NewHandler(carts),
		Metrics:   rec,
		JWTSecret: secret,
		Users:     st,
		Ping:      ping,
	})
}

func call(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutFlow(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := call(h, http.MethodPost, "/api/auth/register", "", `{"name":"Asha","email":"asha@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.Token)

	assert.Equal(t, http.StatusUnauthorized, call(h, http.MethodGet, "/api/cart", "", "").Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/api/auth/me", auth.Token, "").Code)

	rec = call(h, http.MethodPost, "/api/cart/items", auth.Token, `{"productId":"mx-vita-c","qty":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(h, http.MethodPost, "/api/cart/checkout", auth.Token, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var o ordertypes.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))

	rec = call(h, http.MethodGet, "/api/orders/"+o.OrderID+"/status", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mediexpress_orders_placed_total 1")
	assert.Contains(t, rec.Body.String(), `handler="/api/cart/checkout"`)
}

func TestPublicRoutes(t *testing.T) {
	h := newTestRouter(t, nil)

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/api/products", "", "").Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/api/products/mx-ibu-200", "", "").Code)
	assert.Equal(t, http.StatusNotFound, call(h, http.MethodGet, "/api/orders/MX-20260106-000000", "", "").Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/healthz", "", "").Code)
}

func TestHealthzReportsBackendFailure(t *testing.T) {
	h := newTestRouter(t, func(context.Context) error { return errors.New("db down") })
	assert.Equal(t, http.StatusServiceUnavailable, call(h, http.MethodGet, "/healthz", "", "").Code)
}
