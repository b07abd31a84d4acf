package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	httpapi "github.com/i474232898/weather-gateway/internal/api/http"
	"github.com/i474232898/weather-gateway/internal/config"
	"github.com/i474232898/weather-gateway/internal/logger"
	"github.com/i474232898/weather-gateway/internal/metrics"
	"github.com/i474232898/weather-gateway/internal/weather"
	"github.com/i474232898/weather-gateway/internal/weather/providers"
)

const serviceName = "weather-service"

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

	// Shared HTTP client for outbound geocoding and forecast calls.
	httpClient := &http.Client{Timeout: cfg.Upstream.HTTPTimeout}
	openMeteo := providers.NewOpenMeteoProvider(httpClient, cfg.Upstream.GeocodingURL, cfg.Upstream.ForecastURL)

	deps := weather.Dependencies{
		Geocoder: openMeteo,
		Provider: openMeteo,
	}
	if cfg.Upstream.GoogleAPIKey != "" {
		deps.Reverse = providers.NewGoogleReverseGeocoder(cfg.Upstream.GoogleAPIKey)
	}
	if cfg.Upstream.AnalyticsURL != "" {
		reportClient := &http.Client{Timeout: cfg.Upstream.AnalyticsTimeout}
		deps.Reporter = providers.NewAnalyticsReporter(reportClient, cfg.Upstream.AnalyticsURL)
	}

	service := weather.NewService(deps, weather.Options{ReportTimeout: cfg.Upstream.AnalyticsTimeout}, lg)
	httpapi.RegisterWeatherRoutes(app, service)

	defer service.Drain()
	return httpapi.Run(app, cfg.Port, lg)
}
