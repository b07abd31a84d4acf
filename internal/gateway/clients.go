// Package gateway fronts the weather and analytics services for the browser client.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/i474232898/weather-gateway/internal/history"
	"github.com/i474232898/weather-gateway/internal/weather"
)

// ErrUpstream marks a downstream service answering with an unexpected status.
var ErrUpstream = errors.New("downstream service error")

// StatusError carries the status a downstream service answered with.
type StatusError struct {
	Service string
	Status  int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", e.Service, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

type restClient struct {
	name string
	http *resty.Client
}

func newRestClient(name, baseURL string, timeout time.Duration, logger *slog.Logger) restClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("downstream response",
			slog.String("service", name),
			slog.String("method", resp.Request.Method),
			slog.String("url", resp.Request.URL),
			slog.Int("status", resp.StatusCode()),
			slog.Duration("duration", resp.Time()))
		return nil
	})

	return restClient{name: name, http: c}
}

// get decodes a 2xx JSON body into out. A 404 becomes weather.ErrNotFound.
func (c restClient) get(ctx context.Context, path string, pathParams, query map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(pathParams).
		SetQueryParams(query).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", c.name, ErrUpstream, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return weather.ErrNotFound
	}
	if resp.IsError() {
		return &StatusError{Service: c.name, Status: resp.StatusCode()}
	}
	return nil
}

// WeatherClient calls the weather service.
type WeatherClient struct {
	rest restClient
}

func NewWeatherClient(baseURL string, timeout time.Duration, logger *slog.Logger) *WeatherClient {
	return &WeatherClient{rest: newRestClient("weather-service", baseURL, timeout, logger)}
}

func (c *WeatherClient) Weather(ctx context.Context, city string) (weather.CurrentConditions, error) {
	var out weather.CurrentConditions
	err := c.rest.get(ctx, "/weather/{city}", map[string]string{"city": city}, nil, &out)
	return out, err
}

func (c *WeatherClient) WeatherByCoords(ctx context.Context, lat, lon float64) (weather.CurrentConditions, error) {
	var out weather.CurrentConditions
	err := c.rest.get(ctx, "/weather/coordinates/{lat}/{lon}", map[string]string{
		"lat": strconv.FormatFloat(lat, 'f', -1, 64),
		"lon": strconv.FormatFloat(lon, 'f', -1, 64),
	}, nil, &out)
	return out, err
}

func (c *WeatherClient) Forecast(ctx context.Context, city string) (weather.Forecast, error) {
	var out weather.Forecast
	err := c.rest.get(ctx, "/forecast/{city}", map[string]string{"city": city}, nil, &out)
	return out, err
}

func (c *WeatherClient) Search(ctx context.Context, query string) ([]weather.Candidate, error) {
	out := []weather.Candidate{}
	err := c.rest.get(ctx, "/search/{query}", map[string]string{"query": query}, nil, &out)
	return out, err
}

func (c *WeatherClient) Geocode(ctx context.Context, city string) ([]weather.Location, error) {
	var out []weather.Location
	err := c.rest.get(ctx, "/geocode/{city}", map[string]string{"city": city}, nil, &out)
	return out, err
}

// AnalyticsClient calls the analytics service.
type AnalyticsClient struct {
	rest restClient
}

func NewAnalyticsClient(baseURL string, timeout time.Duration, logger *slog.Logger) *AnalyticsClient {
	return &AnalyticsClient{rest: newRestClient("analytics-service", baseURL, timeout, logger)}
}

func (c *AnalyticsClient) CityStats(ctx context.Context, city string, days int) (history.CityStats, error) {
	var out history.CityStats
	err := c.rest.get(ctx, "/stats/city/{city}", map[string]string{"city": city},
		map[string]string{"days": strconv.Itoa(days)}, &out)
	return out, err
}

func (c *AnalyticsClient) Trends(ctx context.Context, city string, days int) ([]history.TrendPoint, error) {
	out := []history.TrendPoint{}
	err := c.rest.get(ctx, "/trends/{city}", map[string]string{"city": city},
		map[string]string{"days": strconv.Itoa(days)}, &out)
	return out, err
}

func (c *AnalyticsClient) Popular(ctx context.Context, limit int) ([]history.PopularCity, error) {
	out := []history.PopularCity{}
	err := c.rest.get(ctx, "/popular", nil, map[string]string{"limit": strconv.Itoa(limit)}, &out)
	return out, err
}

func (c *AnalyticsClient) History(ctx context.Context, page, limit int) (history.Page, error) {
	var out history.Page
	err := c.rest.get(ctx, "/history", nil, map[string]string{
		"page":  strconv.Itoa(page),
		"limit": strconv.Itoa(limit),
	}, &out)
	return out, err
}
