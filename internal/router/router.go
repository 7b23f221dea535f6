package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/antonminaichev/mediexpress/internal/cart"
	"github.com/antonminaichev/mediexpress/internal/catalog"
	"github.com/antonminaichev/mediexpress/internal/logger"
	"github.com/antonminaichev/mediexpress/internal/metrics"
	"github.com/antonminaichev/mediexpress/internal/middleware"
	"github.com/antonminaichev/mediexpress/internal/order"
	"github.com/antonminaichev/mediexpress/internal/user"
)

type Deps struct {
	User    *user.Handler
	Order   *order.Handler
	Catalog *catalog.Handler
	Cart    *cart.Handler
	Metrics *metrics.Recorder

	JWTSecret []byte
	Users     middleware.UserFinder
	// Ping backs /healthz; nil reports healthy.
	Ping func(ctx context.Context) error
}

func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Use(middleware.GzipHandler)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if d.Ping != nil {
			if err := d.Ping(req.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	auth := middleware.JWTMiddleware(d.JWTSecret, d.Users)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", d.User.Register)
		r.Post("/login", d.User.Login)
		r.With(auth).Get("/me", d.User.Me)
	})
	r.Mount("/api/products", d.Catalog.Routes())
	r.Mount("/api/orders", d.Order.Routes())

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Mount("/api/cart", d.Cart.Routes())
	})

	return r
}
