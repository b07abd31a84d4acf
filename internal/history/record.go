// Package history persists weather lookups and answers the analytics queries over them.
package history

import (
	"time"

	"github.com/google/uuid"
)

// Coordinates is the position a record was looked up at.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" bson:"lon" validate:"gte=-180,lte=180"`
}

// Record is one weather lookup as reported by the weather service.
// An empty City is the "null city" the cleanup operations deal with.
type Record struct {
	ID            string      `json:"id" bson:"_id"`
	City          string      `json:"city" bson:"city,omitempty"`
	Country       string      `json:"country,omitempty" bson:"country,omitempty"`
	OriginalQuery string      `json:"originalQuery,omitempty" bson:"originalQuery,omitempty"`
	QueryLanguage string      `json:"queryLanguage,omitempty" bson:"queryLanguage,omitempty" validate:"omitempty,oneof=ru en"`
	Source        string      `json:"source" bson:"source" validate:"omitempty,oneof=city coordinates"`
	Temperature   float64     `json:"temperature" bson:"temperature"`
	FeelsLike     float64     `json:"feels_like" bson:"feels_like"`
	TempMin       float64     `json:"temp_min" bson:"temp_min"`
	TempMax       float64     `json:"temp_max" bson:"temp_max"`
	Humidity      int         `json:"humidity" bson:"humidity" validate:"gte=0,lte=100"`
	Pressure      int         `json:"pressure" bson:"pressure" validate:"gte=0"`
	WindSpeed     float64     `json:"wind_speed" bson:"wind_speed" validate:"gte=0"`
	WindDeg       int         `json:"wind_deg" bson:"wind_deg"`
	WeatherCode   int         `json:"weather_code" bson:"weather_code"`
	Description   string      `json:"description" bson:"description"`
	Icon          string      `json:"icon" bson:"icon"`
	Coordinates   Coordinates `json:"coordinates" bson:"coordinates"`
	Date          time.Time   `json:"date" bson:"date"`
}

// SourceCity is the default source of a record.
const SourceCity = "city"

// withDefaults fills the server-assigned fields.
func (r Record) withDefaults(now time.Time) Record {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Date.IsZero() {
		r.Date = now
	}
	r.Date = r.Date.UTC()
	if r.Source == "" {
		r.Source = SourceCity
	}
	return r
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Page is a page of records, newest first.
type Page struct {
	Data       []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CitySummary aggregates every record of one city.
type CitySummary struct {
	City         string    `json:"city" bson:"_id"`
	Count        int64     `json:"count" bson:"count"`
	AvgTemp      float64   `json:"avgTemp" bson:"avgTemp"`
	FirstRequest time.Time `json:"firstRequest" bson:"firstRequest"`
	LastRequest  time.Time `json:"lastRequest" bson:"lastRequest"`
}

// CityStats aggregates the recent records of one city. TotalRequests is zero when there are none.
type CityStats struct {
	City                  string   `json:"city" bson:"_id"`
	AvgTemp               float64  `json:"avgTemp" bson:"avgTemp"`
	MaxTemp               float64  `json:"maxTemp" bson:"maxTemp"`
	MinTemp               float64  `json:"minTemp" bson:"minTemp"`
	AvgHumidity           float64  `json:"avgHumidity" bson:"avgHumidity"`
	AvgPressure           float64  `json:"avgPressure" bson:"avgPressure"`
	AvgWindSpeed          float64  `json:"avgWindSpeed" bson:"avgWindSpeed"`
	TotalRequests         int64    `json:"totalRequests" bson:"totalRequests"`
	MostCommonDescription string   `json:"mostCommonDescription,omitempty" bson:"-"`
	Descriptions          []string `json:"-" bson:"descriptions"`
}

// TrendPoint is the temperature summary of one UTC calendar day.
type TrendPoint struct {
	Date    string  `json:"date" bson:"_id"`
	AvgTemp float64 `json:"avgTemp" bson:"avgTemp"`
	MaxTemp float64 `json:"maxTemp" bson:"maxTemp"`
	MinTemp float64 `json:"minTemp" bson:"minTemp"`
}

// PopularCity groups the records sharing one coordinate.
type PopularCity struct {
	City        string      `json:"city" bson:"city"`
	AllNames    []string    `json:"allNames" bson:"allNames"`
	Requests    int64       `json:"requests" bson:"requests"`
	Country     string      `json:"country" bson:"country"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
}

const dayLayout = "2006-01-02"

// mostCommon returns the most frequent value; on equal counts the earliest one wins.
func mostCommon(values []string) string {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best, bestCount := "", 0
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

// unique drops repeated values, keeping first occurrences in order.
func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
