package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/havenops/stockledger/pkg/app"
	"github.com/havenops/stockledger/pkg/cache"
	"github.com/havenops/stockledger/pkg/config"
	"github.com/havenops/stockledger/pkg/database"
	"github.com/havenops/stockledger/pkg/events"
	"github.com/havenops/stockledger/pkg/logger"
	"github.com/havenops/stockledger/pkg/telemetry"
	"github.com/havenops/stockledger/services/inventory/application/subscribers"
	inventoryEvents "github.com/havenops/stockledger/services/inventory/domain/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log,
		database.WithPoolSize(cfg.DBMaxOpenConns, cfg.DBMaxIdleConns),
	)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(pool.DB(), cfg.ServiceName+"-consumer", log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	appConfig := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	<-ctx.Done()

	// EventBus.Close (deferred) waits up to 30s for in-flight handlers.
	log.Info("shutting down worker...")
}

// registerSubscribers wires all domain event handlers.
// Handlers must be idempotent: the EventBus redelivers on failure.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	alerter := subscribers.NewReorderAlerter(
		cache.NewReorderAlerts(a.Redis, a.Config.ReorderAlertTTL),
		a.Logger,
	)

	errCh, err := a.EventBus.Subscribe(ctx, inventoryEvents.TopicItemChanged, alerter.Handle)
	if err != nil {
		return err
	}

	// Drain subscriber errors so the channel never blocks.
	go func() {
		for err := range errCh {
			a.Logger.ErrorContext(ctx, "subscriber error",
				"topic", inventoryEvents.TopicItemChanged,
				"error", err,
			)
		}
	}()

	a.Logger.Info("event subscribers registered", "topics", []string{inventoryEvents.TopicItemChanged})
	return nil
}
