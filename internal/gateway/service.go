package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-gateway/internal/history"
	"github.com/i474232898/weather-gateway/internal/lang"
	"github.com/i474232898/weather-gateway/internal/metrics"
	"github.com/i474232898/weather-gateway/internal/weather"
)

// Analytics defaults mirror the analytics service.
const (
	DefaultStatsDays    = history.DefaultStatsDays
	DefaultTrendDays    = history.DefaultTrendDays
	DefaultPopularLimit = history.DefaultPopularLimit
	DefaultPageLimit    = history.DefaultPageLimit
)

// WeatherAPI is the subset of the weather service the gateway uses.
type WeatherAPI interface {
	Weather(ctx context.Context, city string) (weather.CurrentConditions, error)
	WeatherByCoords(ctx context.Context, lat, lon float64) (weather.CurrentConditions, error)
	Forecast(ctx context.Context, city string) (weather.Forecast, error)
	Search(ctx context.Context, query string) ([]weather.Candidate, error)
	Geocode(ctx context.Context, city string) ([]weather.Location, error)
}

// AnalyticsAPI is the subset of the analytics service the gateway uses.
type AnalyticsAPI interface {
	CityStats(ctx context.Context, city string, days int) (history.CityStats, error)
	Trends(ctx context.Context, city string, days int) ([]history.TrendPoint, error)
	Popular(ctx context.Context, limit int) ([]history.PopularCity, error)
	History(ctx context.Context, page, limit int) (history.Page, error)
}

// Dashboard combines every data category for one city. A category that failed
// is left empty and its error is listed in Errors.
type Dashboard struct {
	City     string                     `json:"city"`
	Weather  *weather.CurrentConditions `json:"weather"`
	Forecast *weather.Forecast          `json:"forecast"`
	Stats    history.CityStats          `json:"stats"`
	Trends   []history.TrendPoint       `json:"trends"`
	Errors   map[string]string          `json:"errors,omitempty"`
}

// Service serves the gateway API. Weather lookups are cached for ttl; analytics
// lookups degrade to empty values when the analytics service fails.
type Service struct {
	weather   WeatherAPI
	analytics AnalyticsAPI
	cache     Cache
	ttl       time.Duration
	logger    *slog.Logger
}

func NewService(w WeatherAPI, a AnalyticsAPI, cache Cache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{weather: w, analytics: a, cache: cache, ttl: ttl, logger: logger}
}

func (s *Service) Weather(ctx context.Context, city string) (weather.CurrentConditions, error) {
	return cached(ctx, s, "weather:"+cacheKey(city), func(ctx context.Context) (weather.CurrentConditions, error) {
		return s.weather.Weather(ctx, city)
	})
}

func (s *Service) WeatherByCoords(ctx context.Context, lat, lon float64) (weather.CurrentConditions, error) {
	key := fmt.Sprintf("coords:%.4f,%.4f", lat, lon)
	return cached(ctx, s, key, func(ctx context.Context) (weather.CurrentConditions, error) {
		return s.weather.WeatherByCoords(ctx, lat, lon)
	})
}

func (s *Service) Forecast(ctx context.Context, city string) (weather.Forecast, error) {
	return cached(ctx, s, "forecast:"+cacheKey(city), func(ctx context.Context) (weather.Forecast, error) {
		return s.weather.Forecast(ctx, city)
	})
}

func (s *Service) Search(ctx context.Context, query string) ([]weather.Candidate, error) {
	return cached(ctx, s, "search:"+cacheKey(query), func(ctx context.Context) ([]weather.Candidate, error) {
		return s.weather.Search(ctx, query)
	})
}

// Coordinates returns the position of the best match for city.
func (s *Service) Coordinates(ctx context.Context, city string) (weather.Coordinates, error) {
	return cached(ctx, s, "coordinates:"+cacheKey(city), func(ctx context.Context) (weather.Coordinates, error) {
		locs, err := s.weather.Geocode(ctx, city)
		if err != nil {
			return weather.Coordinates{}, err
		}
		if len(locs) == 0 {
			return weather.Coordinates{}, weather.ErrNotFound
		}
		return weather.Coordinates{Lat: locs[0].Latitude, Lon: locs[0].Longitude}, nil
	})
}

func (s *Service) Stats(ctx context.Context, city string, days int) history.CityStats {
	if days <= 0 {
		days = DefaultStatsDays
	}
	st, err := s.analytics.CityStats(ctx, city, days)
	if err != nil {
		s.degraded(ctx, "stats", err)
		return history.CityStats{City: city}
	}
	return st
}

func (s *Service) Trends(ctx context.Context, city string, days int) []history.TrendPoint {
	if days <= 0 {
		days = DefaultTrendDays
	}
	points, err := s.analytics.Trends(ctx, city, days)
	if err != nil {
		s.degraded(ctx, "trends", err)
		return []history.TrendPoint{}
	}
	return points
}

func (s *Service) Popular(ctx context.Context, limit int) []history.PopularCity {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	popular, err := s.analytics.Popular(ctx, limit)
	if err != nil {
		s.degraded(ctx, "popular", err)
		return []history.PopularCity{}
	}
	return popular
}

func (s *Service) History(ctx context.Context, page, limit int) history.Page {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	p, err := s.analytics.History(ctx, page, limit)
	if err != nil {
		s.degraded(ctx, "history", err)
		return history.Page{Data: []history.Record{}, Pagination: history.Pagination{Page: page, Limit: limit}}
	}
	return p
}

// Dashboard fetches weather, forecast, stats and trends concurrently. Only an unknown
// city fails the whole call; any other failure empties its own category.
func (s *Service) Dashboard(ctx context.Context, city string) (Dashboard, error) {
	d := Dashboard{City: city}
	var forecastErr, weatherErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cc, err := s.Weather(gctx, city)
		if errors.Is(err, weather.ErrNotFound) {
			return err
		}
		if err != nil {
			weatherErr = err
			return nil
		}
		d.Weather = &cc
		return nil
	})
	g.Go(func() error {
		fc, err := s.Forecast(gctx, city)
		if errors.Is(err, weather.ErrNotFound) {
			return err
		}
		if err != nil {
			forecastErr = err
			return nil
		}
		d.Forecast = &fc
		return nil
	})
	g.Go(func() error {
		d.Stats = s.Stats(gctx, city, DefaultStatsDays)
		return nil
	})
	g.Go(func() error {
		d.Trends = s.Trends(gctx, city, DefaultTrendDays)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	for name, err := range map[string]error{"weather": weatherErr, "forecast": forecastErr} {
		if err == nil {
			continue
		}
		if d.Errors == nil {
			d.Errors = make(map[string]string)
		}
		d.Errors[name] = err.Error()
		s.logger.WarnContext(ctx, "dashboard category failed", slog.String("category", name), slog.String("city", city), slog.Any("error", err))
	}
	return d, nil
}

func (s *Service) degraded(ctx context.Context, category string, err error) {
	s.logger.WarnContext(ctx, "analytics unavailable, returning empty value",
		slog.String("category", category), slog.Any("error", err))
}

// cached serves key from the cache or loads and stores it. Cache failures are logged
// and never fail the request. Errors are not cached.
func cached[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.lookup(ctx, "error")
		s.logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.Any("error", err))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			s.lookup(ctx, "hit")
			return v, nil
		}
	} else {
		s.lookup(ctx, "miss")
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err == nil {
		err = s.cache.Set(ctx, key, raw, s.ttl)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return v, nil
}

func (s *Service) lookup(ctx context.Context, result string) {
	metrics.Get().CacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// cacheKey normalizes a free-text query so spellings differing only in case,
// surrounding space or Unicode composition share an entry.
func cacheKey(query string) string {
	return strings.ToLower(lang.Normalize(query).Original)
}
