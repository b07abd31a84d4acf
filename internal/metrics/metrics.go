// Package metrics holds the application's OpenTelemetry instruments and the Prometheus exporter.
package metrics

import (
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "weather-gateway"

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	UpstreamRequestsTotal   metric.Int64Counter
	UpstreamDurationSeconds metric.Float64Histogram
	ReportsTotal            metric.Int64Counter
	CacheLookupsTotal       metric.Int64Counter
	HistoryRecordsDeleted   metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Setup installs a MeterProvider backed by the Prometheus exporter and returns the
// handler serving /metrics. Call it before the first Get.
func Setup() (http.Handler, error) {
	exporter, err := otelprom.New()
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)))
	return promhttp.Handler(), nil
}

// Get returns the instruments, creating them from the global MeterProvider on first use.
// Without Setup the global provider is a no-op, which is what tests get.
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter(meterName)
		m := &AppMetrics{}
		var err error

		m.UpstreamRequestsTotal, err = meter.Int64Counter(
			"upstream_requests_total",
			metric.WithDescription("Total number of upstream provider requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_requests_total: %v", err)
		}

		m.UpstreamDurationSeconds, err = meter.Float64Histogram(
			"upstream_duration_seconds",
			metric.WithDescription("Duration of upstream provider requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_duration_seconds: %v", err)
		}

		m.ReportsTotal, err = meter.Int64Counter(
			"analytics_reports_total",
			metric.WithDescription("Total number of analytics reports by outcome"),
			metric.WithUnit("{report}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create analytics_reports_total: %v", err)
		}

		m.CacheLookupsTotal, err = meter.Int64Counter(
			"cache_lookups_total",
			metric.WithDescription("Total number of gateway cache lookups by result"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create cache_lookups_total: %v", err)
		}

		m.HistoryRecordsDeleted, err = meter.Int64Counter(
			"history_records_deleted_total",
			metric.WithDescription("Total number of history records removed by cleanup"),
			metric.WithUnit("{record}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create history_records_deleted_total: %v", err)
		}

		appMetrics = m
	})
	return appMetrics
}
