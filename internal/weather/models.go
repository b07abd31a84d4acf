package weather

import (
	"math"
	"strconv"
	"time"
)

// Location is a geocoded place. Country holds the ISO 3166-1 alpha-2 code when the
// geocoder provides one. Values are immutable once produced by a Geocoder.
type Location struct {
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	CountryName string  `json:"countryName,omitempty"`
	Admin1      string  `json:"state,omitempty"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	Timezone    string  `json:"timezone,omitempty"`
}

// Key returns a canonical string key for caching this location.
func (l Location) Key() string {
	return l.Name + ":" + l.Country
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CurrentConditions is the current weather at a resolved location.
// Temperatures are kept unrounded; display rounding belongs to the client.
type CurrentConditions struct {
	City          string      `json:"city"`
	OriginalQuery string      `json:"originalQuery,omitempty"`
	Country       string      `json:"country"`
	Temperature   float64     `json:"temperature"`
	FeelsLike     float64     `json:"feels_like"`
	TempMin       float64     `json:"temp_min"`
	TempMax       float64     `json:"temp_max"`
	Humidity      int         `json:"humidity"`
	Pressure      int         `json:"pressure"`
	WindSpeed     float64     `json:"wind_speed"`
	WindDeg       int         `json:"wind_deg"`
	WeatherCode   int         `json:"weather_code"`
	Condition     Condition   `json:"condition"`
	Description   string      `json:"description"`
	Icon          string      `json:"icon"`
	Coordinates   Coordinates `json:"coordinates"`
	Timezone      string      `json:"timezone,omitempty"`
	ObservedAt    time.Time   `json:"observedAt"`
}

// Temp is a temperature in degrees Celsius that serializes with one decimal place.
type Temp float64

// MarshalJSON rounds to one decimal only at serialization time.
func (t Temp) MarshalJSON() ([]byte, error) {
	v := math.Round(float64(t)*10) / 10
	return []byte(strconv.FormatFloat(v, 'f', 1, 64)), nil
}

// ForecastDay summarizes one calendar day of forecast samples.
type ForecastDay struct {
	Date        string `json:"date"`
	AvgTemp     Temp   `json:"avgTemp"`
	MinTemp     Temp   `json:"minTemp"`
	MaxTemp     Temp   `json:"maxTemp"`
	AvgHumidity int    `json:"avgHumidity"`
	Description string `json:"mostCommonDescription"`
	Icon        string `json:"icon"`
	WeatherCode *int   `json:"weatherCode,omitempty"`
}

// Forecast is a multi-day forecast for a city. Days are ordered by Date ascending.
type Forecast struct {
	City    string        `json:"city"`
	Country string        `json:"country"`
	Days    []ForecastDay `json:"forecast"`
}

// Sample is one fine-grained forecast entry (typically hourly) as delivered by a provider.
type Sample struct {
	Time        string
	Temperature float64
	Humidity    float64
	WeatherCode int
}

// Candidate is a "did you mean" search result.
type Candidate struct {
	Name      string  `json:"name"`
	LocalName string  `json:"localName"`
	Country   string  `json:"country"`
	State     string  `json:"state,omitempty"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

// Source tags where a lookup originated.
type Source string

const (
	SourceCity        Source = "city"
	SourceCoordinates Source = "coordinates"
)

// Observation is what gets reported to the analytics collaborator after a successful fetch.
type Observation struct {
	CurrentConditions
	QueryLanguage string    `json:"queryLanguage,omitempty"`
	Source        Source    `json:"source"`
	Date          time.Time `json:"date"`
}
