package weather

import (
	"context"
	"log/slog"

	"github.com/i474232898/weather-gateway/internal/lang"
)

// RelaxedCount is the result ceiling used by the widest fallback search.
const RelaxedCount = 10

// Lookup is a single geocoding request produced by a strategy.
type Lookup struct {
	Name     string
	Count    int
	Language string
}

// Strategy builds one geocoding attempt from a normalized query. ok=false skips it.
type Strategy struct {
	Name  string
	Build func(q lang.Query, maxResults int) (l Lookup, ok bool)
}

// DefaultStrategies is the fallback chain: raw query, transliteration for Cyrillic
// input, then the raw query with a wider result ceiling when that ceiling is larger.
var DefaultStrategies = []Strategy{
	{
		Name: "raw",
		Build: func(q lang.Query, maxResults int) (Lookup, bool) {
			return Lookup{Name: q.Original, Count: maxResults, Language: q.Language()}, true
		},
	},
	{
		Name: "transliterated",
		Build: func(q lang.Query, maxResults int) (Lookup, bool) {
			if q.Script != lang.ScriptCyrillic {
				return Lookup{}, false
			}
			return Lookup{Name: q.Transliterated, Count: maxResults, Language: "en"}, true
		},
	},
	{
		Name: "relaxed",
		Build: func(q lang.Query, maxResults int) (Lookup, bool) {
			if maxResults >= RelaxedCount {
				return Lookup{}, false
			}
			return Lookup{Name: q.Original, Count: RelaxedCount, Language: q.Language()}, true
		},
	},
}

// Resolver resolves free-text place names through an ordered list of strategies.
type Resolver struct {
	geocoder   Geocoder
	strategies []Strategy
	logger     *slog.Logger
}

// NewResolver creates a Resolver using DefaultStrategies.
func NewResolver(geocoder Geocoder, logger *slog.Logger) *Resolver {
	return &Resolver{
		geocoder:   geocoder,
		strategies: DefaultStrategies,
		logger:     logger,
	}
}

// Resolve returns up to maxResults candidates in provider order. It stops at the first
// strategy yielding results and returns ErrNotFound when none do. Provider errors
// are returned as *GeocodeFailure and are not retried.
func (r *Resolver) Resolve(ctx context.Context, query string, maxResults int) ([]Location, error) {
	if maxResults <= 0 {
		maxResults = 1
	}
	q := lang.Normalize(query)
	if q.Original == "" {
		return nil, ErrNotFound
	}

	for _, st := range r.strategies {
		l, ok := st.Build(q, maxResults)
		if !ok {
			continue
		}

		r.logger.DebugContext(ctx, "geocoding attempt",
			slog.String("strategy", st.Name),
			slog.String("query", q.Original),
			slog.String("search", l.Name),
			slog.Int("count", l.Count))

		locs, err := r.geocoder.Search(ctx, l.Name, l.Count, l.Language)
		if err != nil {
			return nil, &GeocodeFailure{Query: query, Err: err}
		}
		if len(locs) == 0 {
			continue
		}
		if len(locs) > maxResults {
			locs = locs[:maxResults]
		}
		return locs, nil
	}

	r.logger.InfoContext(ctx, "city not found", slog.String("query", q.Original), slog.String("script", string(q.Script)))
	return nil, ErrNotFound
}
