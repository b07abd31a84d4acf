package weather

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type searchCall struct {
	Name     string
	Count    int
	Language string
}

// fakeGeocoder answers from a name -> locations table and records every call.
type fakeGeocoder struct {
	mu      sync.Mutex
	results map[string][]Location
	err     error
	calls   []searchCall
}

func (f *fakeGeocoder) Search(_ context.Context, name string, count int, language string) ([]Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, searchCall{Name: name, Count: count, Language: language})
	if f.err != nil {
		return nil, f.err
	}
	locs := f.results[name]
	if len(locs) > count {
		locs = locs[:count]
	}
	return locs, nil
}

type fakeProvider struct {
	reading    Reading
	samples    []Sample
	err        error
	currentFor []Location
	hourlyDays int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Current(_ context.Context, loc Location) (Reading, error) {
	f.currentFor = append(f.currentFor, loc)
	return f.reading, f.err
}

func (f *fakeProvider) Hourly(_ context.Context, _ Location, days int) ([]Sample, error) {
	f.hourlyDays = days
	return f.samples, f.err
}

type fakeReverse struct {
	loc Location
	err error
}

func (f *fakeReverse) Reverse(context.Context, float64, float64) (Location, error) {
	return f.loc, f.err
}

// fakeReporter records observations; release, when set, blocks Report until closed.
type fakeReporter struct {
	mu      sync.Mutex
	got     []Observation
	err     error
	release chan struct{}
}

func (f *fakeReporter) Report(ctx context.Context, obs Observation) error {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, obs)
	return f.err
}

func (f *fakeReporter) observations() []Observation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Observation(nil), f.got...)
}
