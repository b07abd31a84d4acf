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
	"github.com/i474232898/weather-gateway/internal/gateway"
	"github.com/i474232898/weather-gateway/internal/logger"
	"github.com/i474232898/weather-gateway/internal/metrics"
)

const serviceName = "gateway"

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

	cache, closeCache, err := openCache(cfg.Gateway, lg)
	if err != nil {
		return fmt.Errorf("open %s cache: %w", cfg.Gateway.CacheBackend, err)
	}
	defer closeCache()

	weatherClient := gateway.NewWeatherClient(cfg.Gateway.WeatherURL, cfg.Gateway.Timeout, lg)
	analyticsClient := gateway.NewAnalyticsClient(cfg.Gateway.AnalyticsURL, cfg.Gateway.Timeout, lg)
	service := gateway.NewService(weatherClient, analyticsClient, cache, cfg.Gateway.CacheTTL, lg)

	httpapi.RegisterGatewayRoutes(app, service)

	return httpapi.Run(app, cfg.Port, lg)
}

func openCache(cfg config.GatewayConfig, lg *slog.Logger) (gateway.Cache, func(), error) {
	if cfg.CacheBackend != config.BackendValkey {
		return gateway.NewMemoryCache(cfg.CacheTTL), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := gateway.ConnectValkey(ctx, cfg.ValkeyAddr)
	if err != nil {
		return nil, nil, err
	}
	lg.Info("connected to valkey", slog.String("addr", cfg.ValkeyAddr))
	return gateway.NewValkeyCache(client, "weather-gateway:"), client.Close, nil
}
