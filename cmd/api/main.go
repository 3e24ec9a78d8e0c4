package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
	"github.com/ariefcatur/go-sample-storefront/internal/catalog"
	"github.com/ariefcatur/go-sample-storefront/internal/checkout"
	"github.com/ariefcatur/go-sample-storefront/internal/config"
	"github.com/ariefcatur/go-sample-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-sample-storefront/internal/kafka"
	"github.com/ariefcatur/go-sample-storefront/internal/logger"
	"github.com/ariefcatur/go-sample-storefront/internal/metrics"
	"github.com/ariefcatur/go-sample-storefront/internal/orders"
	"github.com/ariefcatur/go-sample-storefront/internal/postgres"
	"github.com/ariefcatur/go-sample-storefront/internal/redisx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "storefront-api"}).Error(context.Background(), "config", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: cfg.ServiceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, postgres.DefaultPoolOptions)
	if err != nil {
		fatal(ctx, logg, "db connect", err)
	}
	defer db.Close()
	repo := &orders.Repo{DB: db}
	if err := repo.EnsureSchema(ctx); err != nil {
		fatal(ctx, logg, "orders schema", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: submitted orders and cart changes
	orderProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderSubmitted, 1024, logg.Zerolog())
	orderProd.Start()
	cartProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicCartChanged, 4096, logg.Zerolog())
	cartProd.Start()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promReg)

	products, err := newCatalog(ctx, cfg, db, rdb, logg)
	if err != nil {
		fatal(ctx, logg, "catalog", err)
	}

	registry := cart.NewRegistry(
		redisx.NewCartSnapshots(rdb, cfg.Cart.SnapshotTTL),
		logg.Zerolog(),
		cart.WithMaxQuantity(cfg.Cart.MaxQuantity),
		cart.WithLogger(logg.Zerolog()),
	)

	svc := &checkout.Service{
		Sender:   checkout.NewWebhook(cfg.Checkout.WebhookURL, cfg.Checkout.WebhookTimeout),
		Claims:   redisx.NewClaims(rdb),
		Events:   orderProd,
		Metrics:  m,
		Log:      logg,
		Producer: cfg.ServiceName,
		FileName: cfg.Checkout.CSVFileName,
	}

	router := httpx.NewRouter(httpx.Deps{
		Registry:    registry,
		Catalog:     products,
		Submissions: repo,
		Checkout:    svc,
		Events:      cartProd,
		Metrics:     m,
		Gatherer:    promReg,
		Log:         logg,
		Service:     cfg.ServiceName,
		CSVName:     cfg.Checkout.CSVFileName,
	})

	// HTTP server
	var inflight httpx.InFlight
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: inflight.Middleware(router), ReadHeaderTimeout: 5 * time.Second}
	// open cart streams end as soon as shutdown starts
	srv.RegisterOnShutdown(registry.CloseSubscribers)

	go evictIdle(ctx, registry, cfg.Cart.SnapshotTTL, m, logg)

	go func() {
		logg.Event(ctx).Str("addr", cfg.HTTPAddr).Str("catalog", cfg.Catalog.Source).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(ctx, logg, "listen", err)
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logg.Info(ctx, "shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		logg.Warn(ctx, "http shutdown incomplete, closing connections", err)
		_ = srv.Close()
	}
	// handlers may still publish; producers close only after they return
	ctx3, cancel3 := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel3()
	if err := inflight.Wait(ctx3); err != nil {
		logg.Warn(ctx, "handlers still running at producer close", err)
	}
	cancel()
	orderProd.Close()
	cartProd.Close()
	orderProd.WaitClosed()
	cartProd.WaitClosed()
}

// evictIdle drops carts untouched for longer than the snapshot TTL; Redis
// rehydrates them if the shopper comes back before the snapshot expires.
func evictIdle(ctx context.Context, registry *cart.Registry, idle time.Duration, m *metrics.Storefront, logg *logger.Logger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := registry.Evict(idle); n > 0 {
				logg.Event(ctx).Int("evicted", n).Int("sessions", registry.Len()).Msg("idle carts evicted")
			}
			m.SetSessions(registry.Len())
		}
	}
}

// newCatalog picks the configured product source and caches it in Redis.
func newCatalog(ctx context.Context, cfg config.Config, db *pgxpool.Pool, rdb redisx.Cmdable, logg *logger.Logger) (catalog.Provider, error) {
	var inner catalog.Provider
	switch cfg.Catalog.Source {
	case "remote":
		inner = catalog.NewRemote(cfg.Catalog.FetchURL, 10*time.Second)
	case "postgres":
		repo := &catalog.Repo{DB: db}
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		inner = repo
	default:
		return catalog.Seed(), nil
	}
	return catalog.NewCached(inner, rdb, cfg.Catalog.CacheTTL, logg.Zerolog()), nil
}

func fatal(ctx context.Context, logg *logger.Logger, msg string, err error) {
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
