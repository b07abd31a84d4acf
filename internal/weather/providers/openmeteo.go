package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-gateway/internal/weather"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"

	currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m,wind_direction_10m,pressure_msl"
	dailyFields   = "temperature_2m_max,temperature_2m_min"
	hourlyFields  = "temperature_2m,relative_humidity_2m,weather_code"

	openMeteoTimeLayout = "2006-01-02T15:04"
)

// OpenMeteoProvider implements weather.Geocoder and weather.Provider for Open-Meteo.
// No API key is required.
type OpenMeteoProvider struct {
	name         string
	geocodingURL string
	forecastURL  string
	geoHTTP      HTTPClientConfig
	forecastHTTP HTTPClientConfig
	geoCircuit   *gobreaker.CircuitBreaker
	circuit      *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider. Empty URLs fall back to the public endpoints.
func NewOpenMeteoProvider(client *http.Client, geocodingURL, forecastURL string) *OpenMeteoProvider {
	if geocodingURL == "" {
		geocodingURL = DefaultGeocodingURL
	}
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}

	return &OpenMeteoProvider{
		name:         "openmeteo",
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		geoHTTP:      HTTPClientConfig{Name: "openmeteo-geocoding", Client: client},
		forecastHTTP: HTTPClientConfig{Name: "openmeteo-forecast", Client: client},
		geoCircuit:   newBreaker("openmeteo-geocoding"),
		circuit:      newBreaker("openmeteo-forecast"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Search queries the geocoding API. A response without results is an empty slice.
func (p *OpenMeteoProvider) Search(ctx context.Context, name string, count int, language string) ([]weather.Location, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", name)
		values.Set("count", strconv.Itoa(count))
		values.Set("language", language)
		values.Set("format", "json")

		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.geocodingURL, values.Encode()), nil)
	}

	resp, err := doRequestWithBreaker(ctx, p.geoHTTP, p.geoCircuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Name        string  `json:"name"`
			Country     string  `json:"country"`
			CountryCode string  `json:"country_code"`
			Admin1      string  `json:"admin1"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			Timezone    string  `json:"timezone"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}

	locs := make([]weather.Location, 0, len(payload.Results))
	for _, r := range payload.Results {
		country := strings.ToUpper(r.CountryCode)
		if country == "" {
			country = r.Country
		}
		locs = append(locs, weather.Location{
			Name:        r.Name,
			Country:     country,
			CountryName: r.Country,
			Admin1:      r.Admin1,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			Timezone:    r.Timezone,
		})
	}
	return locs, nil
}

// Current fetches current conditions plus today's min/max in one call.
func (p *OpenMeteoProvider) Current(ctx context.Context, loc weather.Location) (weather.Reading, error) {
	buildRequest := func() (*http.Request, error) {
		values := p.baseValues(loc)
		values.Set("current", currentFields)
		values.Set("daily", dailyFields)
		values.Set("forecast_days", "1")

		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.forecastURL, values.Encode()), nil)
	}

	resp, err := doRequestWithBreaker(ctx, p.forecastHTTP, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Time          string  `json:"time"`
			Temperature   float64 `json:"temperature_2m"`
			Humidity      float64 `json:"relative_humidity_2m"`
			FeelsLike     float64 `json:"apparent_temperature"`
			WeatherCode   int     `json:"weather_code"`
			WindSpeed     float64 `json:"wind_speed_10m"`
			WindDirection float64 `json:"wind_direction_10m"`
			PressureMSL   float64 `json:"pressure_msl"`
		} `json:"current"`
		Daily struct {
			TempMax []float64 `json:"temperature_2m_max"`
			TempMin []float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, fmt.Errorf("decode forecast response: %w", err)
	}

	ts, err := time.Parse(openMeteoTimeLayout, payload.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	r := weather.Reading{
		Timestamp:     ts,
		Temperature:   payload.Current.Temperature,
		FeelsLike:     payload.Current.FeelsLike,
		TempMin:       payload.Current.Temperature,
		TempMax:       payload.Current.Temperature,
		Humidity:      payload.Current.Humidity,
		PressureHpa:   payload.Current.PressureMSL,
		WindSpeed:     payload.Current.WindSpeed,
		WindDirection: payload.Current.WindDirection,
		WeatherCode:   payload.Current.WeatherCode,
	}
	if len(payload.Daily.TempMin) > 0 {
		r.TempMin = payload.Daily.TempMin[0]
	}
	if len(payload.Daily.TempMax) > 0 {
		r.TempMax = payload.Daily.TempMax[0]
	}
	return r, nil
}

// Hourly fetches the hourly series for the next days.
func (p *OpenMeteoProvider) Hourly(ctx context.Context, loc weather.Location, days int) ([]weather.Sample, error) {
	buildRequest := func() (*http.Request, error) {
		values := p.baseValues(loc)
		values.Set("hourly", hourlyFields)
		values.Set("forecast_days", strconv.Itoa(days))

		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.forecastURL, values.Encode()), nil)
	}

	resp, err := doRequestWithBreaker(ctx, p.forecastHTTP, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time        []string  `json:"time"`
			Temperature []float64 `json:"temperature_2m"`
			Humidity    []float64 `json:"relative_humidity_2m"`
			WeatherCode []int     `json:"weather_code"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}

	h := payload.Hourly
	n := min(len(h.Time), len(h.Temperature))
	samples := make([]weather.Sample, 0, n)
	for i := 0; i < n; i++ {
		s := weather.Sample{Time: h.Time[i], Temperature: h.Temperature[i]}
		if i < len(h.Humidity) {
			s.Humidity = h.Humidity[i]
		}
		if i < len(h.WeatherCode) {
			s.WeatherCode = h.WeatherCode[i]
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func (p *OpenMeteoProvider) baseValues(loc weather.Location) url.Values {
	tz := loc.Timezone
	if tz == "" {
		tz = "auto"
	}
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	values.Set("timezone", tz)
	values.Set("temperature_unit", "celsius")
	values.Set("wind_speed_unit", "ms")
	return values
}

var (
	_ weather.Geocoder = (*OpenMeteoProvider)(nil)
	_ weather.Provider = (*OpenMeteoProvider)(nil)
)
