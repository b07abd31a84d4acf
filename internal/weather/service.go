package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/i474232898/weather-gateway/internal/lang"
	"github.com/i474232898/weather-gateway/internal/metrics"
)

const (
	// SearchLimit caps "did you mean" results.
	SearchLimit = 5
	// GeocodeLimit caps the candidates returned by Geocode.
	GeocodeLimit = 10

	unknownLocation = "Unknown Location"
)

// Dependencies are the upstream collaborators of a Service. Reverse and Reporter are optional.
type Dependencies struct {
	Geocoder Geocoder
	Provider Provider
	Reverse  ReverseGeocoder
	Reporter Reporter
}

// Options tunes a Service.
type Options struct {
	// ReportTimeout bounds each analytics report.
	ReportTimeout time.Duration
	// ForecastDays is the forecast horizon.
	ForecastDays int
}

// Service orchestrates geocode resolution, weather fetching and analytics reporting.
// It keeps no per-request state; in-flight reports are tracked only so shutdown can drain them.
type Service struct {
	resolver *Resolver
	provider Provider
	reverse  ReverseGeocoder
	reporter Reporter
	opts     Options
	logger   *slog.Logger

	reports sync.WaitGroup
}

// NewService creates a new Service.
func NewService(deps Dependencies, opts Options, logger *slog.Logger) *Service {
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = 2 * time.Second
	}
	if opts.ForecastDays <= 0 {
		opts.ForecastDays = ForecastHorizon
	}
	return &Service{
		resolver: NewResolver(deps.Geocoder, logger),
		provider: deps.Provider,
		reverse:  deps.Reverse,
		reporter: deps.Reporter,
		opts:     opts,
		logger:   logger,
	}
}

// GetWeather resolves city and returns its current conditions.
func (s *Service) GetWeather(ctx context.Context, city string) (CurrentConditions, error) {
	q := lang.Normalize(city)
	locs, err := s.resolver.Resolve(ctx, city, 1)
	if err != nil {
		return CurrentConditions{}, err
	}
	if q.Script == lang.ScriptCyrillic {
		s.logger.InfoContext(ctx, "weather search",
			slog.String("query", q.Original),
			slog.String("transliterated", q.Transliterated),
			slog.String("found", locs[0].Name))
	}
	return s.FetchCurrent(ctx, locs[0], q, SourceCity)
}

// GetWeatherByCoords returns current conditions at a coordinate. The place name comes from
// the reverse geocoder when one is configured.
func (s *Service) GetWeatherByCoords(ctx context.Context, lat, lon float64) (CurrentConditions, error) {
	loc := Location{Name: unknownLocation, Latitude: lat, Longitude: lon}
	if s.reverse != nil {
		named, err := s.reverse.Reverse(ctx, lat, lon)
		if err != nil {
			s.logger.WarnContext(ctx, "reverse geocoding failed", slog.Float64("lat", lat), slog.Float64("lon", lon), slog.Any("error", err))
		} else {
			named.Latitude, named.Longitude = lat, lon
			loc = named
		}
	}
	q := lang.Query{Original: fmt.Sprintf("%.4f,%.4f", lat, lon), Script: lang.ScriptUnknown}
	return s.FetchCurrent(ctx, loc, q, SourceCoordinates)
}

// FetchCurrent fetches the current conditions at loc and reports them to analytics
// in the background. The report never delays or alters the returned value.
func (s *Service) FetchCurrent(ctx context.Context, loc Location, q lang.Query, source Source) (CurrentConditions, error) {
	r, err := s.provider.Current(ctx, loc)
	if err != nil {
		s.logger.ErrorContext(ctx, "weather fetch failed",
			slog.String("provider", s.provider.Name()),
			slog.String("query", q.Original),
			slog.Any("error", err))
		return CurrentConditions{}, &WeatherFetchFailure{Query: q.Original, Err: err}
	}

	info := LookupCode(r.WeatherCode)
	cc := CurrentConditions{
		City:        loc.Name,
		Country:     loc.Country,
		Temperature: r.Temperature,
		FeelsLike:   r.FeelsLike,
		TempMin:     r.TempMin,
		TempMax:     r.TempMax,
		Humidity:    int(math.Round(r.Humidity)),
		Pressure:    int(math.Round(r.PressureHpa)),
		WindSpeed:   r.WindSpeed,
		WindDeg:     int(math.Round(r.WindDirection)),
		WeatherCode: r.WeatherCode,
		Condition:   info.Condition,
		Description: info.Description(q.Language()),
		Icon:        info.Icon,
		Coordinates: Coordinates{Lat: loc.Latitude, Lon: loc.Longitude},
		Timezone:    loc.Timezone,
		ObservedAt:  r.Timestamp,
	}
	if source == SourceCity {
		cc.OriginalQuery = q.Original
	}

	obs := Observation{CurrentConditions: cc, Source: source, Date: time.Now().UTC()}
	if source == SourceCity {
		obs.QueryLanguage = q.Language()
	}
	s.report(obs)

	return cc, nil
}

// GetForecast resolves city and returns a per-day forecast.
func (s *Service) GetForecast(ctx context.Context, city string) (Forecast, error) {
	q := lang.Normalize(city)
	locs, err := s.resolver.Resolve(ctx, city, 1)
	if err != nil {
		return Forecast{}, err
	}
	loc := locs[0]

	samples, err := s.provider.Hourly(ctx, loc, s.opts.ForecastDays)
	if err != nil {
		s.logger.ErrorContext(ctx, "forecast fetch failed",
			slog.String("provider", s.provider.Name()),
			slog.String("query", q.Original),
			slog.Any("error", err))
		return Forecast{}, &WeatherFetchFailure{Query: q.Original, Err: err}
	}

	days := AggregateDaily(samples, s.opts.ForecastDays, q.Language())
	if len(days) == 0 {
		s.logger.WarnContext(ctx, "forecast aggregation produced no entries", slog.String("city", loc.Key()))
	}

	return Forecast{City: loc.Name, Country: loc.Country, Days: days}, nil
}

// SearchCities returns up to SearchLimit candidates. No match is an empty list, not an error.
func (s *Service) SearchCities(ctx context.Context, query string) ([]Candidate, error) {
	locs, err := s.resolver.Resolve(ctx, query, SearchLimit)
	if errors.Is(err, ErrNotFound) {
		return []Candidate{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(locs))
	for _, l := range locs {
		out = append(out, Candidate{
			Name:      l.Name,
			LocalName: l.Name,
			Country:   l.Country,
			State:     l.Admin1,
			Lat:       l.Latitude,
			Lon:       l.Longitude,
		})
	}
	return out, nil
}

// Geocode returns every candidate location for city, up to GeocodeLimit.
func (s *Service) Geocode(ctx context.Context, city string) ([]Location, error) {
	return s.resolver.Resolve(ctx, city, GeocodeLimit)
}

// Drain blocks until in-flight analytics reports have finished.
func (s *Service) Drain() {
	s.reports.Wait()
}

func (s *Service) report(obs Observation) {
	if s.reporter == nil {
		return
	}

	s.reports.Add(1)
	go func() {
		defer s.reports.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.ReportTimeout)
		defer cancel()

		outcome := "ok"
		if err := s.reporter.Report(ctx, obs); err != nil {
			outcome = "error"
			s.logger.Warn("analytics report dropped",
				slog.String("city", obs.City),
				slog.String("query", obs.OriginalQuery),
				slog.Any("error", &ReportFailure{City: obs.City, Err: err}))
		}
		metrics.Get().ReportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}()
}
