package weather

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when geocoding yields no candidates after every fallback.
var ErrNotFound = errors.New("city not found")

// GeocodeFailure is an upstream geocoding error.
type GeocodeFailure struct {
	Query string
	Err   error
}

func (e *GeocodeFailure) Error() string {
	return fmt.Sprintf("geocoding %q failed: %v", e.Query, e.Err)
}

func (e *GeocodeFailure) Unwrap() error { return e.Err }

// WeatherFetchFailure is an upstream weather provider error.
type WeatherFetchFailure struct {
	Query string
	Err   error
}

func (e *WeatherFetchFailure) Error() string {
	return fmt.Sprintf("weather fetch for %q failed: %v", e.Query, e.Err)
}

func (e *WeatherFetchFailure) Unwrap() error { return e.Err }

// ReportFailure is an analytics reporting error. It is only ever logged.
type ReportFailure struct {
	City string
	Err  error
}

func (e *ReportFailure) Error() string {
	return fmt.Sprintf("analytics report for %q failed: %v", e.City, e.Err)
}

func (e *ReportFailure) Unwrap() error { return e.Err }
