package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/antonminaichev/mediexpress/internal/catalog"
	"github.com/antonminaichev/mediexpress/internal/pricing"
	"github.com/antonminaichev/mediexpress/internal/tracking"
	"github.com/antonminaichev/mediexpress/internal/types/order"
	"github.com/antonminaichev/mediexpress/internal/types/product"
)

type ProductResolver interface {
	Get(ctx context.Context, id string) (*product.Product, error)
}

type Handler struct {
	store         *Store
	products      ProductResolver
	rate          decimal.Decimal
	trackInterval time.Duration
	log           *zap.Logger
}

func NewHandler(store *Store, products ProductResolver, rate decimal.Decimal, trackInterval time.Duration, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, products: products, rate: rate, trackInterval: trackInterval, log: log}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.PlaceOrder)
	r.Get("/{id}", h.GetOrder)
	r.Get("/{id}/status", h.GetOrderStatus)
	r.Get("/{id}/track", h.TrackOrder)
	return r
}

type placeRequest struct {
	Items []struct {
		ProductID string `json:"productId"`
		Qty       int    `json:"qty"`
	} `json:"items"`
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		http.Error(w, "order has no items", http.StatusBadRequest)
		return
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Qty < 1 {
			http.Error(w, fmt.Sprintf("invalid quantity for %s", it.ProductID), http.StatusBadRequest)
			return
		}
		p, err := h.products.Get(r.Context(), it.ProductID)
		switch {
		case err == nil:
		case errors.Is(err, catalog.ErrProductNotFound):
			http.Error(w, fmt.Sprintf("unknown product %s", it.ProductID), http.StatusBadRequest)
			return
		default:
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		items = append(items, order.Item{Product: *p, Qty: it.Qty})
	}

	o := h.store.CreateOrder(r.Context(), items, pricing.Totals(items, h.rate))
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.store.GetOrder)
}

func (h *Handler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.store.GetOrderStatus)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, get func(context.Context, string) (*order.Order, error)) {
	o, err := get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, o)
	case errors.Is(err, ErrOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// TrackOrder streams a "snapshot" server-sent event per poll until the order
// is delivered or the client goes away.
func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	orderID := chi.URLParam(r, "id")

	// holds only the newest snapshot; the callback never blocks
	snaps := make(chan tracking.Snapshot, 1)
	p := tracking.NewPoller(h.store, func(s tracking.Snapshot) {
		select {
		case <-snaps:
		default:
		}
		snaps <- s
	}, tracking.WithLogger(h.log))
	defer p.Stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	p.Start(orderID, h.trackInterval)
	for {
		select {
		case <-r.Context().Done():
			return
		case s := <-snaps:
			data, err := json.Marshal(s)
			if err != nil {
				h.log.Warn("encode snapshot", zap.Error(err))
				return
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
			if s.Found && s.Order.Status.IsTerminal() {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
