package history

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/i474232898/weather-gateway/internal/metrics"
)

// Query defaults, applied when a parameter is missing or not positive.
const (
	DefaultPageLimit    = 20
	MaxPageLimit        = 100
	DefaultStatsDays    = 30
	DefaultTrendDays    = 7
	DefaultPopularLimit = 5
	DefaultCleanupDays  = 30
)

// Service answers the analytics queries over a Store.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new Service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Add stores rec, assigning an id and date when absent.
func (s *Service) Add(ctx context.Context, rec Record) (Record, error) {
	rec = rec.withDefaults(s.now())
	if err := s.store.Insert(ctx, rec); err != nil {
		return Record{}, err
	}
	s.logger.DebugContext(ctx, "history entry added", slog.String("id", rec.ID), slog.String("city", rec.City))
	return rec, nil
}

// History returns one page of records, newest first.
func (s *Service) History(ctx context.Context, page, limit int) (Page, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)

	records, total, err := s.store.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Data: records,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

func (s *Service) CitySummaries(ctx context.Context) ([]CitySummary, error) {
	return s.store.CitySummaries(ctx)
}

// CityStats summarizes city over the last days days.
func (s *Service) CityStats(ctx context.Context, city string, days int) (CityStats, error) {
	if days <= 0 {
		days = DefaultStatsDays
	}
	return s.store.CityStats(ctx, city, s.daysAgo(days))
}

// Trends returns daily temperature summaries for city over the last days days.
func (s *Service) Trends(ctx context.Context, city string, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}
	return s.store.Trends(ctx, city, s.daysAgo(days))
}

func (s *Service) Popular(ctx context.Context, limit int) ([]PopularCity, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	return s.store.Popular(ctx, limit)
}

// DeleteOld removes records older than days days.
func (s *Service) DeleteOld(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = DefaultCleanupDays
	}
	return s.Purge(ctx, time.Duration(days)*24*time.Hour)
}

// Purge removes records older than retention.
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	n, err := s.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.deleted(ctx, "old", n)
	s.logger.InfoContext(ctx, "old history records deleted", slog.Time("cutoff", cutoff), slog.Int64("deleted", n))
	return n, nil
}

func (s *Service) DeleteNullCities(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteNullCities(ctx)
	if err != nil {
		return 0, err
	}
	s.deleted(ctx, "null_city", n)
	s.logger.InfoContext(ctx, "null-city history records deleted", slog.Int64("deleted", n))
	return n, nil
}

func (s *Service) FixNullCities(ctx context.Context) (int64, error) {
	n, err := s.store.FixNullCities(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "null-city history records fixed", slog.Int64("updated", n))
	return n, nil
}

func (s *Service) daysAgo(days int) time.Time {
	return s.now().AddDate(0, 0, -days)
}

func (s *Service) deleted(ctx context.Context, reason string, n int64) {
	metrics.Get().HistoryRecordsDeleted.Add(ctx, n, metric.WithAttributes(attribute.String("reason", reason)))
}
