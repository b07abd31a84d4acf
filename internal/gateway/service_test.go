package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-gateway/internal/history"
	"github.com/i474232898/weather-gateway/internal/weather"
)

type fakeWeather struct {
	mu    sync.Mutex
	calls map[string]int

	current  weather.CurrentConditions
	forecast weather.Forecast
	locs     []weather.Location
	err      error
	fcErr    error
}

func (f *fakeWeather) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeWeather) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeWeather) Weather(context.Context, string) (weather.CurrentConditions, error) {
	f.hit("weather")
	return f.current, f.err
}

func (f *fakeWeather) WeatherByCoords(context.Context, float64, float64) (weather.CurrentConditions, error) {
	f.hit("coords")
	return f.current, f.err
}

func (f *fakeWeather) Forecast(context.Context, string) (weather.Forecast, error) {
	f.hit("forecast")
	if f.fcErr != nil {
		return weather.Forecast{}, f.fcErr
	}
	return f.forecast, f.err
}

func (f *fakeWeather) Search(context.Context, string) ([]weather.Candidate, error) {
	f.hit("search")
	return []weather.Candidate{{Name: "Paris"}}, f.err
}

func (f *fakeWeather) Geocode(context.Context, string) ([]weather.Location, error) {
	f.hit("geocode")
	return f.locs, f.err
}

type fakeAnalytics struct {
	err error
}

func (f *fakeAnalytics) CityStats(_ context.Context, city string, days int) (history.CityStats, error) {
	return history.CityStats{City: city, TotalRequests: int64(days)}, f.err
}

func (f *fakeAnalytics) Trends(context.Context, string, int) ([]history.TrendPoint, error) {
	return []history.TrendPoint{{Date: "2024-05-01", AvgTemp: 3}}, f.err
}

func (f *fakeAnalytics) Popular(_ context.Context, limit int) ([]history.PopularCity, error) {
	return make([]history.PopularCity, limit), f.err
}

func (f *fakeAnalytics) History(_ context.Context, page, limit int) (history.Page, error) {
	return history.Page{Pagination: history.Pagination{Page: page, Limit: limit, Total: 1, Pages: 1}}, f.err
}

func newTestService(w WeatherAPI, a AnalyticsAPI) *Service {
	return NewService(w, a, NewMemoryCache(time.Minute), time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestWeatherIsCachedByNormalizedKey(t *testing.T) {
	w := &fakeWeather{current: weather.CurrentConditions{City: "Moscow", Temperature: -3.5}}
	s := newTestService(w, &fakeAnalytics{})
	ctx := context.Background()

	first, err := s.Weather(ctx, "Москва")
	require.NoError(t, err)
	second, err := s.Weather(ctx, "  москва ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, w.count("weather"))

	_, err = s.Forecast(ctx, "Москва")
	require.NoError(t, err)
	assert.Equal(t, 1, w.count("forecast"), "forecast has its own entry")
}

func TestErrorsAreNotCached(t *testing.T) {
	w := &fakeWeather{err: weather.ErrNotFound}
	s := newTestService(w, &fakeAnalytics{})
	ctx := context.Background()

	_, err := s.Weather(ctx, "Atlantis")
	assert.ErrorIs(t, err, weather.ErrNotFound)
	_, err = s.Weather(ctx, "Atlantis")
	assert.ErrorIs(t, err, weather.ErrNotFound)
	assert.Equal(t, 2, w.count("weather"))
}

func TestCoordinates(t *testing.T) {
	w := &fakeWeather{locs: []weather.Location{{Name: "Moscow", Latitude: 55.75, Longitude: 37.62}, {Name: "Moscow", Latitude: 46.73}}}
	s := newTestService(w, &fakeAnalytics{})

	c, err := s.Coordinates(context.Background(), "Moscow")
	require.NoError(t, err)
	assert.Equal(t, weather.Coordinates{Lat: 55.75, Lon: 37.62}, c)

	empty := newTestService(&fakeWeather{}, &fakeAnalytics{})
	_, err = empty.Coordinates(context.Background(), "Moscow")
	assert.ErrorIs(t, err, weather.ErrNotFound)
}

func TestWeatherByCoordsCached(t *testing.T) {
	w := &fakeWeather{current: weather.CurrentConditions{City: "Berlin"}}
	s := newTestService(w, &fakeAnalytics{})

	for i := 0; i < 3; i++ {
		cc, err := s.WeatherByCoords(context.Background(), 52.52, 13.405)
		require.NoError(t, err)
		assert.Equal(t, "Berlin", cc.City)
	}
	assert.Equal(t, 1, w.count("coords"))
}

func TestAnalyticsDefaultsAndDegradation(t *testing.T) {
	ctx := context.Background()

	ok := newTestService(&fakeWeather{}, &fakeAnalytics{})
	assert.Equal(t, int64(DefaultStatsDays), ok.Stats(ctx, "Berlin", 0).TotalRequests)
	assert.Len(t, ok.Popular(ctx, 0), DefaultPopularLimit)
	assert.Equal(t, DefaultPageLimit, ok.History(ctx, 0, 0).Pagination.Limit)
	assert.Len(t, ok.Trends(ctx, "Berlin", 0), 1)

	down := newTestService(&fakeWeather{}, &fakeAnalytics{err: errors.New("connection refused")})
	assert.Equal(t, history.CityStats{City: "Berlin"}, down.Stats(ctx, "Berlin", 7))
	assert.NotNil(t, down.Trends(ctx, "Berlin", 7))
	assert.Empty(t, down.Trends(ctx, "Berlin", 7))
	assert.Empty(t, down.Popular(ctx, 3))
	page := down.History(ctx, 2, 10)
	assert.Empty(t, page.Data)
	assert.Equal(t, history.Pagination{Page: 2, Limit: 10}, page.Pagination)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	fc := weather.Forecast{City: "Berlin", Days: []weather.ForecastDay{{Date: "2024-05-01"}}}

	t.Run("all categories", func(t *testing.T) {
		s := newTestService(&fakeWeather{current: weather.CurrentConditions{City: "Berlin"}, forecast: fc}, &fakeAnalytics{})
		d, err := s.Dashboard(ctx, "Berlin")
		require.NoError(t, err)
		require.NotNil(t, d.Weather)
		require.NotNil(t, d.Forecast)
		assert.Equal(t, "Berlin", d.Weather.City)
		assert.Len(t, d.Forecast.Days, 1)
		assert.Equal(t, int64(DefaultStatsDays), d.Stats.TotalRequests)
		assert.Len(t, d.Trends, 1)
		assert.Empty(t, d.Errors)
	})

	t.Run("forecast and analytics fail independently", func(t *testing.T) {
		w := &fakeWeather{current: weather.CurrentConditions{City: "Berlin"}, fcErr: &StatusError{Service: "weather-service", Status: 502}}
		s := newTestService(w, &fakeAnalytics{err: errors.New("down")})
		d, err := s.Dashboard(ctx, "Berlin")
		require.NoError(t, err)
		require.NotNil(t, d.Weather)
		assert.Nil(t, d.Forecast)
		assert.Contains(t, d.Errors, "forecast")
		assert.NotContains(t, d.Errors, "weather")
		assert.Empty(t, d.Trends)
	})

	t.Run("unknown city", func(t *testing.T) {
		s := newTestService(&fakeWeather{err: weather.ErrNotFound}, &fakeAnalytics{})
		_, err := s.Dashboard(ctx, "Atlantis")
		assert.ErrorIs(t, err, weather.ErrNotFound)
	})
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}

func TestCacheFailureDoesNotFailRequest(t *testing.T) {
	w := &fakeWeather{current: weather.CurrentConditions{City: "Berlin"}}
	s := NewService(w, &fakeAnalytics{}, brokenCache{}, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	cc, err := s.Weather(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", cc.City)
}
