package weather

import (
	"math"
	"sort"
	"strings"
)

// ForecastHorizon is the number of days exposed by the forecast endpoint.
const ForecastHorizon = 5

// AggregateDaily groups samples by calendar date and summarizes each day.
// Averages and extrema are computed over the raw samples. The dominant description
// and icon are the most frequent values of the day; ties go to the first seen.
// At most days buckets are returned, oldest first.
func AggregateDaily(samples []Sample, days int, language string) []ForecastDay {
	if days <= 0 {
		days = ForecastHorizon
	}

	type bucket struct {
		temps        []float64
		humidity     []float64
		descriptions []string
		icons        []string
		codes        []int
	}

	buckets := make(map[string]*bucket)
	for _, s := range samples {
		k := dateKey(s.Time)
		if k == "" {
			continue
		}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
		}
		info := LookupCode(s.WeatherCode)
		b.temps = append(b.temps, s.Temperature)
		b.humidity = append(b.humidity, s.Humidity)
		b.descriptions = append(b.descriptions, info.Description(language))
		b.icons = append(b.icons, info.Icon)
		b.codes = append(b.codes, s.WeatherCode)
	}

	// ISO dates sort chronologically as strings.
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > days {
		keys = keys[:days]
	}

	out := make([]ForecastDay, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		minT, maxT := math.Inf(1), math.Inf(-1)
		var sum float64
		for _, t := range b.temps {
			sum += t
			minT = math.Min(minT, t)
			maxT = math.Max(maxT, t)
		}
		code := mostCommon(b.codes)
		out = append(out, ForecastDay{
			Date:        k,
			AvgTemp:     Temp(sum / float64(len(b.temps))),
			MinTemp:     Temp(minT),
			MaxTemp:     Temp(maxT),
			AvgHumidity: int(math.Round(mean(b.humidity))),
			Description: mostCommon(b.descriptions),
			Icon:        mostCommon(b.icons),
			WeatherCode: &code,
		})
	}
	return out
}

// dateKey truncates a provider timestamp ("2006-01-02T15:04" or "2006-01-02 15:04:05") to its date.
func dateKey(ts string) string {
	ts = strings.TrimSpace(ts)
	if i := strings.IndexAny(ts, "T "); i >= 0 {
		ts = ts[:i]
	}
	if len(ts) != len("2006-01-02") {
		return ""
	}
	return ts
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// mostCommon returns the most frequent value; on equal counts the earliest one wins.
func mostCommon[T comparable](values []T) T {
	var best T
	if len(values) == 0 {
		return best
	}
	counts := make(map[T]int, len(values))
	bestCount := 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if c := counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}
