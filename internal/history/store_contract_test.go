package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

var (
	moscowAt = Coordinates{Lat: 55.7522, Lon: 37.6156}
	berlinAt = Coordinates{Lat: 52.5244, Lon: 13.4105}
)

func rec(id, city string, at time.Time, temp float64) Record {
	r := Record{ID: id, City: city, Temperature: temp, Date: at, Source: SourceCity, Description: "Clear sky"}
	switch city {
	case "Moscow", "Москва":
		r.Coordinates, r.Country = moscowAt, "Russia"
	case "Berlin":
		r.Coordinates, r.Country = berlinAt, "Germany"
	}
	return r
}

// seed inserts a fixed data set: 3 Moscow lookups (one under its Russian name),
// 2 Berlin lookups and one record without a city.
func seed(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, r := range []Record{
		rec("m1", "Moscow", base.Add(-50*time.Hour), -4),
		rec("b1", "Berlin", base.Add(-49*time.Hour), 10),
		rec("m2", "Moscow", base.Add(-26*time.Hour), -2),
		rec("m3", "Москва", base.Add(-25*time.Hour), 0),
		rec("b2", "Berlin", base.Add(-1*time.Hour), 14),
		{ID: "n1", OriginalQuery: "Kazan", Temperature: 3, Date: base.Add(-40 * 24 * time.Hour), Source: SourceCity},
	} {
		require.NoError(t, s.Insert(ctx, r))
	}
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("list newest first", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		got, total, err := s.List(ctx, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(6), total)
		require.Len(t, got, 2)
		assert.Equal(t, "b2", got[0].ID)
		assert.Equal(t, "m3", got[1].ID)

		got, _, err = s.List(ctx, 4, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "n1", got[1].ID)

		got, _, err = s.List(ctx, 10, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("city summaries", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		got, err := s.CitySummaries(ctx)
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, "Berlin", got[0].City)
		assert.Equal(t, int64(2), got[0].Count)
		assert.InDelta(t, 12, got[0].AvgTemp, 1e-9)
		assert.True(t, got[0].FirstRequest.Equal(base.Add(-49*time.Hour)))
		assert.True(t, got[0].LastRequest.Equal(base.Add(-1*time.Hour)))
		assert.Equal(t, "Moscow", got[1].City)
		assert.Equal(t, int64(2), got[1].Count)
	})

	t.Run("city stats window", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		st, err := s.CityStats(ctx, "Moscow", base.Add(-30*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), st.TotalRequests)
		assert.InDelta(t, -2, st.AvgTemp, 1e-9)

		st, err = s.CityStats(ctx, "Moscow", base.Add(-72*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "Moscow", st.City)
		assert.Equal(t, int64(2), st.TotalRequests)
		assert.InDelta(t, -3, st.AvgTemp, 1e-9)
		assert.Equal(t, -4.0, st.MinTemp)
		assert.Equal(t, -2.0, st.MaxTemp)
		assert.Equal(t, "Clear sky", st.MostCommonDescription)

		st, err = s.CityStats(ctx, "Atlantis", base.Add(-72*time.Hour))
		require.NoError(t, err)
		assert.Zero(t, st.TotalRequests)
	})

	t.Run("trends by day", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		got, err := s.Trends(ctx, "Berlin", base.Add(-7*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2024-05-08", got[0].Date)
		assert.Equal(t, "2024-05-10", got[1].Date)
		assert.Equal(t, 14.0, got[1].MaxTemp)
	})

	t.Run("popular groups by coordinates", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		got, err := s.Popular(ctx, 5)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Moscow", got[0].City)
		assert.Equal(t, []string{"Moscow", "Москва"}, got[0].AllNames)
		assert.Equal(t, int64(3), got[0].Requests)
		assert.Equal(t, "Russia", got[0].Country)
		assert.Equal(t, moscowAt, got[0].Coordinates)
		assert.Equal(t, "Berlin", got[1].City)

		got, err = s.Popular(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("cleanup", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		n, err := s.FixNullCities(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		summaries, err := s.CitySummaries(ctx)
		require.NoError(t, err)
		assert.Contains(t, cityNames(summaries), "Kazan")

		n, err = s.DeleteNullCities(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = s.DeleteBefore(ctx, base.Add(-30*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		_, total, err := s.List(ctx, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("delete null cities", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		n, err := s.DeleteNullCities(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func cityNames(summaries []CitySummary) []string {
	out := make([]string, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s.City)
	}
	return out
}
