package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-sample-storefront/internal/config"
	kafkax "github.com/ariefcatur/go-sample-storefront/internal/kafka"
	"github.com/ariefcatur/go-sample-storefront/internal/logger"
	"github.com/ariefcatur/go-sample-storefront/internal/orders"
	"github.com/ariefcatur/go-sample-storefront/internal/postgres"
	"github.com/ariefcatur/go-sample-storefront/internal/recorder"
	"github.com/ariefcatur/go-sample-storefront/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "storefront-recorder"}).Error(context.Background(), "config", err)
		os.Exit(1)
	}
	name := cfg.ServiceName + "-recorder"
	logg := logger.New(logger.Options{
		ServiceName: name,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, postgres.DefaultPoolOptions)
	if err != nil {
		logg.Error(ctx, "db connect", err)
		os.Exit(1)
	}
	defer db.Close()
	repo := &orders.Repo{DB: db}
	if err := repo.EnsureSchema(ctx); err != nil {
		logg.Error(ctx, "orders schema", err)
		os.Exit(1)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &recorder.Service{
		Store:       repo,
		Dedup:       redisx.NewClaims(rdb),
		ServiceName: name,
		Log:         logg.Zerolog(),
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.Recorder.Group, orders.TopicOrderSubmitted, cfg.Recorder.Workers, logg.Zerolog())

	done := make(chan struct{})
	go func() {
		defer close(done)
		logg.Event(ctx).
			Str("group", cfg.Recorder.Group).
			Str("topic", orders.TopicOrderSubmitted).
			Int("workers", cfg.Recorder.Workers).
			Msg("recorder consumer started")
		if err := cons.Start(ctx, svc.HandleOrderSubmitted); err != nil {
			logg.Error(ctx, "consumer exit", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logg.Info(ctx, "shutting down consumer")
	cancel()
	<-done
}
