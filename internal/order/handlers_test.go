package order

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonminaichev/mediexpress/internal/catalog"
	"github.com/antonminaichev/mediexpress/internal/pricing"
	"github.com/antonminaichev/mediexpress/internal/storage/memory"
	"github.com/antonminaichev/mediexpress/internal/tracking"
	"github.com/antonminaichev/mediexpress/internal/types/order"
)

func newTestRouter(s *Store, interval time.Duration) chi.Router {
	h := NewHandler(s, catalog.NewService(nil, catalog.Fallback, nil), pricing.DefaultUSDToINR, interval, nil)
	r := chi.NewRouter()
	r.Mount("/api/orders", h.Routes())
	return r
}

func TestPlaceOrderHandler(t *testing.T) {
	s, _ := newTestStore(t, memory.New())
	r := newTestRouter(s, time.Second)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"ok", `{"items":[{"productId":"mx-para-500","qty":2}]}`, http.StatusCreated},
		{"bad json", `{"items":`, http.StatusBadRequest},
		{"no items", `{"items":[]}`, http.StatusBadRequest},
		{"zero qty", `{"items":[{"productId":"mx-para-500","qty":0}]}`, http.StatusBadRequest},
		{"unknown product", `{"items":[{"productId":"nope","qty":1}]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestPlaceOrderTotals(t *testing.T) {
	s, _ := newTestStore(t, memory.New())
	r := newTestRouter(s, time.Second)

	rec := httptest.NewRecorder()
	body := `{"items":[{"productId":"mx-para-500","qty":1}]}`
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var o order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, order.StagePlaced, o.Status)
	// 300 INR override, under the free delivery threshold
	assert.Equal(t, "300", o.Totals.Subtotal.String())
	assert.Equal(t, "49", o.Totals.Delivery.String())
	assert.Equal(t, "349", o.Totals.Total.String())
}

func TestGetOrderHandlers(t *testing.T) {
	s, clock := newTestStore(t, memory.New())
	r := newTestRouter(s, time.Second)
	created := s.CreateOrder(context.Background(), sampleItems(), sampleTotals())
	clock.Add(25 * time.Second)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+created.OrderID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var plain order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plain))
	assert.Equal(t, order.StagePlaced, plain.Status)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+created.OrderID+"/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var advanced order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &advanced))
	assert.Equal(t, order.StageDispatched, advanced.Status)

	for _, path := range []string{"/api/orders/MX-0", "/api/orders/MX-0/status"} {
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestTrackOrderStreamsUntilDelivered(t *testing.T) {
	s := NewStore(memory.New(), WithCadence(2*time.Millisecond))
	created := s.CreateOrder(context.Background(), sampleItems(), sampleTotals())

	srv := httptest.NewServer(newTestRouter(s, time.Millisecond))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/api/orders/" + created.OrderID + "/track")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var last tracking.Snapshot
	events := 0
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		events++
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &last))
	}
	require.NoError(t, sc.Err())

	assert.GreaterOrEqual(t, events, 1)
	assert.True(t, last.Found)
	assert.Equal(t, created.OrderID, last.OrderID)
	assert.Equal(t, order.StageDelivered, last.Order.Status)
}
