package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	httpapi "github.com/i474232898/weather-gateway/internal/api/http"
	"github.com/i474232898/weather-gateway/internal/config"
	"github.com/i474232898/weather-gateway/internal/history"
	"github.com/i474232898/weather-gateway/internal/logger"
	"github.com/i474232898/weather-gateway/internal/metrics"
	"github.com/i474232898/weather-gateway/internal/scheduler"
)

const serviceName = "analytics-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := logger.New(cfg.Env, cfg.LogLevel).With(slog.String("service", serviceName))
	slog.SetDefault(lg)

	if err := run(cfg, lg); err != nil {
		lg.Error("service stopped", slog.Any("error", err))
		os.Exit(1)
	}
	lg.Info("shutdown complete")
}

func run(cfg *config.AppConfig, lg *slog.Logger) error {
	app := httpapi.NewApp(serviceName, lg)
	if cfg.Metrics {
		h, err := metrics.Setup()
		if err != nil {
			return fmt.Errorf("metrics setup: %w", err)
		}
		httpapi.MountMetrics(app, h)
	}

	store, closeStore, err := openStore(cfg.History, lg)
	if err != nil {
		return fmt.Errorf("open %s history store: %w", cfg.History.Backend, err)
	}
	defer closeStore()

	service := history.NewService(store, lg)

	// Periodic retention sweep.
	sched := scheduler.New(service, cfg.History.Retention, cfg.History.RetentionInterval, lg)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	httpapi.RegisterAnalyticsRoutes(app, service)

	return httpapi.Run(app, cfg.Port, lg)
}

func openStore(cfg config.HistoryConfig, lg *slog.Logger) (history.Store, func(), error) {
	if cfg.Backend == config.BackendMemory {
		lg.Info("using in-memory history store", slog.Int("maxRecords", cfg.MaxRecords))
		return history.NewMemoryStore(cfg.MaxRecords), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := history.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			lg.Warn("mongo disconnect failed", slog.Any("error", err))
		}
	}

	store, err := history.NewMongoStore(ctx, client, cfg.MongoDB, cfg.MongoCollection)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	lg.Info("connected to mongo", slog.String("db", cfg.MongoDB), slog.String("collection", cfg.MongoCollection))
	return store, closeFn, nil
}
