package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backends selectable through configuration.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendValkey = "valkey"
)

// AppConfig is shared by the weather service, the analytics service and the gateway.
// Each binary reads the sections it needs.
type AppConfig struct {
	Port     string `yaml:"port"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"logLevel"`

	Metrics  bool           `yaml:"metrics"`
	Upstream UpstreamConfig `yaml:"upstream"`
	History  HistoryConfig  `yaml:"history"`
	Gateway  GatewayConfig  `yaml:"gateway"`
}

// UpstreamConfig controls the weather service's outbound calls.
type UpstreamConfig struct {
	// HTTPTimeout bounds every geocoding and forecast call.
	HTTPTimeout      time.Duration `yaml:"httpTimeout"`
	GeocodingURL     string        `yaml:"geocodingUrl"`
	ForecastURL      string        `yaml:"forecastUrl"`
	GoogleAPIKey     string        `yaml:"googleApiKey"`
	AnalyticsURL     string        `yaml:"analyticsUrl"`
	AnalyticsTimeout time.Duration `yaml:"analyticsTimeout"`
}

// HistoryConfig controls the analytics service storage.
type HistoryConfig struct {
	Backend           string        `yaml:"backend"`
	MongoURI          string        `yaml:"mongoUri"`
	MongoDB           string        `yaml:"mongoDb"`
	MongoCollection   string        `yaml:"mongoCollection"`
	MaxRecords        int           `yaml:"maxRecords"`
	Retention         time.Duration `yaml:"retention"`
	RetentionInterval time.Duration `yaml:"retentionInterval"`
}

// GatewayConfig controls the gateway's downstream clients and cache.
type GatewayConfig struct {
	WeatherURL   string        `yaml:"weatherUrl"`
	AnalyticsURL string        `yaml:"analyticsUrl"`
	Timeout      time.Duration `yaml:"timeout"`
	CacheBackend string        `yaml:"cacheBackend"`
	CacheTTL     time.Duration `yaml:"cacheTtl"`
	ValkeyAddr   string        `yaml:"valkeyAddr"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Port:    "8080",
		Metrics: true,
		Upstream: UpstreamConfig{
			HTTPTimeout:      8 * time.Second,
			AnalyticsURL:     "http://localhost:3002",
			AnalyticsTimeout: 2 * time.Second,
		},
		History: HistoryConfig{
			Backend:           BackendMongo,
			MongoURI:          "mongodb://localhost:27017",
			MongoDB:           "weather_analytics",
			MongoCollection:   "weatherhistories",
			MaxRecords:        100000,
			Retention:         720 * time.Hour,
			RetentionInterval: 24 * time.Hour,
		},
		Gateway: GatewayConfig{
			WeatherURL:   "http://localhost:3001",
			AnalyticsURL: "http://localhost:3002",
			Timeout:      10 * time.Second,
			CacheBackend: BackendMemory,
			CacheTTL:     10 * time.Minute,
			ValkeyAddr:   "localhost:6379",
		},
	}
}

// Load reads configuration from an optional YAML file (CONFIG_PATH), then the
// environment (with .env support), and validates the result.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func hydrateFromFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.Env = getenvDefault("APP_ENV", cfg.Env)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.Metrics = getenvBool("METRICS_ENABLED", cfg.Metrics)

	u := &cfg.Upstream
	u.GeocodingURL = getenvDefault("GEOCODING_BASE_URL", u.GeocodingURL)
	u.ForecastURL = getenvDefault("FORECAST_BASE_URL", u.ForecastURL)
	u.GoogleAPIKey = getenvDefault("GOOGLE_GEOCODER_API_KEY", u.GoogleAPIKey)
	u.AnalyticsURL = getenvDefault("ANALYTICS_SERVICE_URL", u.AnalyticsURL)

	h := &cfg.History
	h.Backend = getenvDefault("HISTORY_BACKEND", h.Backend)
	h.MongoURI = getenvDefault("MONGO_URI", h.MongoURI)
	h.MongoDB = getenvDefault("MONGO_DB", h.MongoDB)
	h.MongoCollection = getenvDefault("MONGO_COLLECTION", h.MongoCollection)
	h.MaxRecords = getenvInt("HISTORY_MAX_RECORDS", h.MaxRecords)

	g := &cfg.Gateway
	g.WeatherURL = getenvDefault("WEATHER_SERVICE_URL", g.WeatherURL)
	g.AnalyticsURL = getenvDefault("ANALYTICS_SERVICE_URL", g.AnalyticsURL)
	g.CacheBackend = getenvDefault("CACHE_BACKEND", g.CacheBackend)
	g.ValkeyAddr = getenvDefault("VALKEY_ADDR", g.ValkeyAddr)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", &u.HTTPTimeout},
		{"ANALYTICS_TIMEOUT", &u.AnalyticsTimeout},
		{"HISTORY_RETENTION", &h.Retention},
		{"RETENTION_INTERVAL", &h.RetentionInterval},
		{"GATEWAY_TIMEOUT", &g.Timeout},
		{"CACHE_TTL", &g.CacheTTL},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate checks the values every binary depends on.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.Upstream.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.Upstream.AnalyticsTimeout <= 0 {
		errs = append(errs, errors.New("ANALYTICS_TIMEOUT must be positive"))
	}
	switch c.History.Backend {
	case BackendMemory:
	case BackendMongo:
		if c.History.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo history backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown HISTORY_BACKEND %q", c.History.Backend))
	}
	if c.History.Retention < 0 {
		errs = append(errs, errors.New("HISTORY_RETENTION must not be negative"))
	}
	switch c.Gateway.CacheBackend {
	case BackendMemory:
	case BackendValkey:
		if c.Gateway.ValkeyAddr == "" {
			errs = append(errs, errors.New("VALKEY_ADDR is required for the valkey cache backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.Gateway.CacheBackend))
	}
	if c.Gateway.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true")
	}
	return def
}
