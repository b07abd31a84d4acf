package providers

import (
	"context"
	"errors"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-gateway/internal/weather"
)

var errNoAddress = errors.New("no address for coordinates")

// reverseFunc matches geocoder.GeocodingReverse.
type reverseFunc func(geocoder.Location) ([]geocoder.Address, error)

// GoogleReverseGeocoder names coordinates through the Google Geocoding API.
type GoogleReverseGeocoder struct {
	lookup  reverseFunc
	circuit *gobreaker.CircuitBreaker
}

// NewGoogleReverseGeocoder configures the geocoder package with apiKey.
// The key is process-wide, so only one instance should exist.
func NewGoogleReverseGeocoder(apiKey string) *GoogleReverseGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleReverseGeocoder{
		lookup:  geocoder.GeocodingReverse,
		circuit: newBreaker("google-geocoding"),
	}
}

// Reverse returns the city at lat/lon. The geocoder package does not accept a
// context, so the call runs in its own goroutine and is abandoned on ctx expiry.
func (g *GoogleReverseGeocoder) Reverse(ctx context.Context, lat, lon float64) (weather.Location, error) {
	type result struct {
		addrs []geocoder.Address
		err   error
	}
	done := make(chan result, 1)
	start := time.Now()

	go func() {
		out, err := g.circuit.Execute(func() (interface{}, error) {
			return g.lookup(geocoder.Location{Latitude: lat, Longitude: lon})
		})
		addrs, _ := out.([]geocoder.Address)
		done <- result{addrs: addrs, err: err}
	}()

	select {
	case <-ctx.Done():
		record(ctx, "google-geocoding", start, ctx.Err())
		return weather.Location{}, ctx.Err()
	case r := <-done:
		record(ctx, "google-geocoding", start, r.err)
		if r.err != nil {
			return weather.Location{}, r.err
		}
		return firstPlace(r.addrs, lat, lon)
	}
}

func firstPlace(addrs []geocoder.Address, lat, lon float64) (weather.Location, error) {
	for _, a := range addrs {
		name := a.City
		if name == "" {
			name = a.County
		}
		if name == "" {
			name = a.State
		}
		if name == "" {
			continue
		}
		return weather.Location{
			Name:      name,
			Country:   a.Country,
			Admin1:    a.State,
			Latitude:  lat,
			Longitude: lon,
		}, nil
	}
	return weather.Location{}, errNoAddress
}

var _ weather.ReverseGeocoder = (*GoogleReverseGeocoder)(nil)
