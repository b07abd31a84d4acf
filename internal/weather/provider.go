package weather

import (
	"context"
	"time"
)

// Reading is a provider's current-conditions payload before it is mapped to CurrentConditions.
type Reading struct {
	Timestamp     time.Time
	Temperature   float64
	FeelsLike     float64
	TempMin       float64
	TempMax       float64
	Humidity      float64
	PressureHpa   float64
	WindSpeed     float64
	WindDirection float64
	WeatherCode   int
}

// Geocoder turns a free-text name into candidate locations, in provider order.
type Geocoder interface {
	Search(ctx context.Context, name string, count int, language string) ([]Location, error)
}

// ReverseGeocoder names the place at a coordinate.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (Location, error)
}

// Provider abstracts a weather data source (e.g. Open-Meteo).
type Provider interface {
	Name() string
	Current(ctx context.Context, loc Location) (Reading, error)
	Hourly(ctx context.Context, loc Location, days int) ([]Sample, error)
}

// Reporter delivers observations to the analytics collaborator.
type Reporter interface {
	Report(ctx context.Context, obs Observation) error
}
