package history

import (
	"context"
	"time"
)

// Store is the persistence contract of the analytics service.
// Implementations return aggregates in a deterministic order.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	// List returns records newest first together with the total count.
	List(ctx context.Context, skip, limit int) ([]Record, int64, error)
	// CitySummaries groups all records by city, most requested first.
	CitySummaries(ctx context.Context) ([]CitySummary, error)
	CityStats(ctx context.Context, city string, since time.Time) (CityStats, error)
	// Trends returns one point per UTC day, oldest first.
	Trends(ctx context.Context, city string, since time.Time) ([]TrendPoint, error)
	// Popular groups named records by coordinates, most requested first.
	Popular(ctx context.Context, limit int) ([]PopularCity, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteNullCities(ctx context.Context) (int64, error)
	// FixNullCities copies OriginalQuery into City where City is empty.
	FixNullCities(ctx context.Context) (int64, error)
}
