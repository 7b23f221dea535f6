package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/antonminaichev/mediexpress/internal/cart"
	"github.com/antonminaichev/mediexpress/internal/catalog"
	"github.com/antonminaichev/mediexpress/internal/logger"
	"github.com/antonminaichev/mediexpress/internal/metrics"
	"github.com/antonminaichev/mediexpress/internal/notify"
	"github.com/antonminaichev/mediexpress/internal/order"
	"github.com/antonminaichev/mediexpress/internal/router"
	"github.com/antonminaichev/mediexpress/internal/user"
)

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	cfg, err := NewConfig()
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Log.Sync()
	log := logger.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	be, err := openBackend(openCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.close(); err != nil {
			log.Warn("failed to close storage", zap.Error(err))
		}
	}()
	log.Info("storage ready", zap.String("backend", cfg.StorageBackend))

	rec := metrics.NewRecorder()
	observers := order.Observers{rec}
	if cfg.AMQPURL != "" {
		pub, err := notify.DialAMQP(cfg.AMQPURL, log)
		if err != nil {
			return err
		}
		defer pub.Close()
		observers = append(observers, pub)
		log.Info("publishing status events to amqp", zap.String("exchange", notify.StatusExchange))
	}
	if brokers := notify.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		pub := notify.NewKafkaPublisher(brokers, cfg.KafkaTopic, log)
		defer pub.Close()
		observers = append(observers, pub)
		log.Info("publishing status events to kafka", zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	}

	rate := decimal.NewFromFloat(cfg.USDToINR)
	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	var remote catalog.Remote
	if cfg.CatalogAPIBase != "" {
		remote = catalog.NewHTTPClient(httpClient, cfg.CatalogAPIBase)
	}
	products := catalog.NewService(remote, catalog.Fallback, log)

	orders := order.NewStore(be.blobs,
		order.WithCadence(cfg.StatusCadence),
		order.WithObserver(observers),
		order.WithLogger(log),
	)
	carts := cart.NewService(cart.NewRepository(be.blobs, log), products, orders, rate, log)
	userSvc := user.NewService(be.users, []byte(cfg.JWTSecret), cfg.JWTTTL)

	r := router.NewRouter(router.Deps{
		User:      user.NewHandler(userSvc),
		Order:     order.NewHandler(orders, products, rate, cfg.TrackInterval, log),
		Catalog:   catalog.NewHandler(products),
		Cart:      cart.NewHandler(carts),
		Metrics:   rec,
		JWTSecret: []byte(cfg.JWTSecret),
		Users:     be.users,
		Ping:      be.ping,
	})

	// no write timeout: tracking streams stay open until the order is delivered
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		IdleTimeout:       120 * time.Second,
		// request contexts end on SIGTERM so open streams let Shutdown finish
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		return srv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}
