// Package metrics exposes order and HTTP counters for Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/antonminaichev/mediexpress/internal/types/order"
)

const namespace = "mediexpress"

// Recorder owns its registry so tests and multiple servers don't collide on
// the global one. It implements the order store's Observer interface.
type Recorder struct {
	registry    *prometheus.Registry
	placed      prometheus.Counter
	transitions *prometheus.CounterVec
	requests    *prometheus.CounterVec
	latencyMS   *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		placed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Total number of orders placed.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_stage_transitions_total",
			Help:      "Order stage transitions, by stage entered.",
		}, []string{"stage"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		latencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
	}
	r.registry.MustRegister(r.placed, r.transitions, r.requests, r.latencyMS)
	return r
}

func (r *Recorder) OrderPlaced(ctx context.Context, o *order.Order) {
	r.placed.Inc()
}

func (r *Recorder) StageAdvanced(ctx context.Context, o *order.Order, t order.Transition) {
	r.transitions.WithLabelValues(string(t.To)).Inc()
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by chi route pattern so path IDs don't explode
// label cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		r.latencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}
