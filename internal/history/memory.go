package history

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a concurrency-safe in-memory Store for development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	// insertion order
	records []Record

	// retention configuration
	maxRecords int // oldest records are dropped beyond this count (0 = unlimited)
}

// NewMemoryStore creates a new MemoryStore. If maxRecords is <= 0, it is treated as unlimited.
func NewMemoryStore(maxRecords int) *MemoryStore {
	return &MemoryStore{maxRecords: maxRecords}
}

// Insert appends rec and enforces retention by count.
func (s *MemoryStore) Insert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if s.maxRecords > 0 && len(s.records) > s.maxRecords {
		over := len(s.records) - s.maxRecords
		s.records = append([]Record(nil), s.records[over:]...)
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, skip, limit int) ([]Record, int64, error) {
	sorted := s.byDate(func(Record) bool { return true })
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}

	total := int64(len(sorted))
	if skip >= len(sorted) {
		return []Record{}, total, nil
	}
	end := min(skip+limit, len(sorted))
	return sorted[skip:end], total, nil
}

func (s *MemoryStore) CitySummaries(_ context.Context) ([]CitySummary, error) {
	groups := make(map[string]*CitySummary)
	var order []string
	for _, r := range s.byDate(func(Record) bool { return true }) {
		g, ok := groups[r.City]
		if !ok {
			g = &CitySummary{City: r.City, FirstRequest: r.Date}
			groups[r.City] = g
			order = append(order, r.City)
		}
		g.AvgTemp += r.Temperature
		g.Count++
		g.LastRequest = r.Date
	}

	out := make([]CitySummary, 0, len(order))
	for _, city := range order {
		g := groups[city]
		g.AvgTemp /= float64(g.Count)
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].City < out[j].City
	})
	return out, nil
}

func (s *MemoryStore) CityStats(_ context.Context, city string, since time.Time) (CityStats, error) {
	recs := s.byDate(func(r Record) bool { return r.City == city && !r.Date.Before(since) })
	if len(recs) == 0 {
		return CityStats{}, nil
	}

	st := CityStats{City: city, MinTemp: math.Inf(1), MaxTemp: math.Inf(-1)}
	var temp, hum, pres, wind float64
	for _, r := range recs {
		temp += r.Temperature
		hum += float64(r.Humidity)
		pres += float64(r.Pressure)
		wind += r.WindSpeed
		st.MinTemp = math.Min(st.MinTemp, r.Temperature)
		st.MaxTemp = math.Max(st.MaxTemp, r.Temperature)
		st.Descriptions = append(st.Descriptions, r.Description)
	}
	n := float64(len(recs))
	st.AvgTemp = temp / n
	st.AvgHumidity = hum / n
	st.AvgPressure = pres / n
	st.AvgWindSpeed = wind / n
	st.TotalRequests = int64(len(recs))
	st.MostCommonDescription = mostCommon(st.Descriptions)
	return st, nil
}

func (s *MemoryStore) Trends(_ context.Context, city string, since time.Time) ([]TrendPoint, error) {
	type acc struct {
		sum      float64
		n        int
		min, max float64
	}
	days := make(map[string]*acc)
	var order []string
	for _, r := range s.byDate(func(r Record) bool { return r.City == city && !r.Date.Before(since) }) {
		day := r.Date.UTC().Format(dayLayout)
		a, ok := days[day]
		if !ok {
			a = &acc{min: math.Inf(1), max: math.Inf(-1)}
			days[day] = a
			order = append(order, day)
		}
		a.sum += r.Temperature
		a.n++
		a.min = math.Min(a.min, r.Temperature)
		a.max = math.Max(a.max, r.Temperature)
	}

	sort.Strings(order)
	out := make([]TrendPoint, 0, len(order))
	for _, day := range order {
		a := days[day]
		out = append(out, TrendPoint{Date: day, AvgTemp: a.sum / float64(a.n), MaxTemp: a.max, MinTemp: a.min})
	}
	return out, nil
}

func (s *MemoryStore) Popular(_ context.Context, limit int) ([]PopularCity, error) {
	groups := make(map[Coordinates]*PopularCity)
	var order []Coordinates
	for _, r := range s.byDate(func(r Record) bool { return r.City != "" }) {
		g, ok := groups[r.Coordinates]
		if !ok {
			g = &PopularCity{Country: r.Country, Coordinates: r.Coordinates}
			groups[r.Coordinates] = g
			order = append(order, r.Coordinates)
		}
		g.AllNames = append(g.AllNames, r.City)
		g.Requests++
	}

	out := make([]PopularCity, 0, len(order))
	for _, c := range order {
		g := groups[c]
		g.AllNames = unique(g.AllNames)
		g.City = g.AllNames[0]
		out = append(out, *g)
	}
	sortPopular(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	return s.deleteWhere(func(r Record) bool { return r.Date.Before(cutoff) }), nil
}

func (s *MemoryStore) DeleteNullCities(_ context.Context) (int64, error) {
	return s.deleteWhere(func(r Record) bool { return r.City == "" }), nil
}

func (s *MemoryStore) FixNullCities(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fixed int64
	for i := range s.records {
		if s.records[i].City == "" && s.records[i].OriginalQuery != "" {
			s.records[i].City = s.records[i].OriginalQuery
			fixed++
		}
	}
	return fixed, nil
}

// byDate returns a copy of the matching records, oldest first.
func (s *MemoryStore) byDate(match func(Record) bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (s *MemoryStore) deleteWhere(match func(Record) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, r := range s.records {
		if match(r) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted
}

// sortPopular orders by request count, then by name.
func sortPopular(out []PopularCity) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Requests != out[j].Requests {
			return out[i].Requests > out[j].Requests
		}
		return out[i].City < out[j].City
	})
}

var _ Store = (*MemoryStore)(nil)
