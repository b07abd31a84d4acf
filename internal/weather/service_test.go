package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moscowReading() Reading {
	return Reading{
		Timestamp:     time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		Temperature:   -7.4,
		FeelsLike:     -12.1,
		TempMin:       -10.2,
		TempMax:       -5.0,
		Humidity:      83.6,
		PressureHpa:   1021.4,
		WindSpeed:     4.1,
		WindDirection: 225.5,
		WeatherCode:   73,
	}
}

func TestGetWeatherCyrillicEndToEnd(t *testing.T) {
	geo := &fakeGeocoder{results: map[string][]Location{"Moskva": {moscow}}}
	prov := &fakeProvider{reading: moscowReading()}
	rep := &fakeReporter{}
	svc := NewService(Dependencies{Geocoder: geo, Provider: prov, Reporter: rep}, Options{}, discardLogger())

	cc, err := svc.GetWeather(context.Background(), "Москва")
	require.NoError(t, err)
	svc.Drain()

	assert.Equal(t, "Moscow", cc.City)
	assert.Equal(t, "RU", cc.Country)
	assert.Equal(t, "Москва", cc.OriginalQuery)
	assert.Equal(t, "Снег", cc.Description)
	assert.Equal(t, "13d", cc.Icon)
	assert.Equal(t, ConditionSnow, cc.Condition)
	assert.Equal(t, 84, cc.Humidity)
	assert.Equal(t, 1021, cc.Pressure)
	assert.Equal(t, 226, cc.WindDeg)
	assert.Equal(t, -7.4, cc.Temperature)
	assert.Equal(t, Coordinates{Lat: moscow.Latitude, Lon: moscow.Longitude}, cc.Coordinates)
	assert.Equal(t, []Location{moscow}, prov.currentFor)

	obs := rep.observations()
	require.Len(t, obs, 1, "reported exactly once")
	assert.Equal(t, cc, obs[0].CurrentConditions)
	assert.Equal(t, "ru", obs[0].QueryLanguage)
	assert.Equal(t, SourceCity, obs[0].Source)
	assert.False(t, obs[0].Date.IsZero())
}

func TestGetWeatherDoesNotWaitForReport(t *testing.T) {
	geo := &fakeGeocoder{results: map[string][]Location{"Moskva": {moscow}}}
	rep := &fakeReporter{release: make(chan struct{})}
	svc := NewService(Dependencies{Geocoder: geo, Provider: &fakeProvider{reading: moscowReading()}, Reporter: rep},
		Options{ReportTimeout: 5 * time.Second}, discardLogger())

	_, err := svc.GetWeather(context.Background(), "Москва")
	require.NoError(t, err)
	assert.Empty(t, rep.observations(), "response returned before the report completed")

	close(rep.release)
	svc.Drain()
	assert.Len(t, rep.observations(), 1)
}

func TestGetWeatherReportFailureIsIgnored(t *testing.T) {
	geo := &fakeGeocoder{results: map[string][]Location{"Moskva": {moscow}}}
	prov := &fakeProvider{reading: moscowReading()}

	ok := NewService(Dependencies{Geocoder: geo, Provider: prov, Reporter: &fakeReporter{}}, Options{}, discardLogger())
	want, err := ok.GetWeather(context.Background(), "Москва")
	require.NoError(t, err)
	ok.Drain()

	failing := &fakeReporter{err: errors.New("analytics down")}
	svc := NewService(Dependencies{Geocoder: geo, Provider: prov, Reporter: failing}, Options{}, discardLogger())
	got, err := svc.GetWeather(context.Background(), "Москва")
	require.NoError(t, err)
	svc.Drain()

	assert.Equal(t, want, got)
	assert.Len(t, failing.observations(), 1)
}

func TestGetWeatherWithoutReporter(t *testing.T) {
	geo := &fakeGeocoder{results: map[string][]Location{"London": {{Name: "London", Country: "GB"}}}}
	svc := NewService(Dependencies{Geocoder: geo, Provider: &fakeProvider{reading: Reading{WeatherCode: 9999}}}, Options{}, discardLogger())

	cc, err := svc.GetWeather(context.Background(), "London")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", cc.Description)
	assert.Equal(t, "01d", cc.Icon)
	assert.Equal(t, ConditionUnknown, cc.Condition)
	assert.Equal(t, "London", cc.OriginalQuery)
}

func TestGetWeatherErrors(t *testing.T) {
	upstream := errors.New("timeout")

	t.Run("not found", func(t *testing.T) {
		svc := NewService(Dependencies{Geocoder: &fakeGeocoder{}, Provider: &fakeProvider{}}, Options{}, discardLogger())
		_, err := svc.GetWeather(context.Background(), "Nowhere")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("geocode failure", func(t *testing.T) {
		svc := NewService(Dependencies{Geocoder: &fakeGeocoder{err: upstream}, Provider: &fakeProvider{}}, Options{}, discardLogger())
		_, err := svc.GetWeather(context.Background(), "Paris")
		var gf *GeocodeFailure
		assert.ErrorAs(t, err, &gf)
	})

	t.Run("weather fetch failure", func(t *testing.T) {
		rep := &fakeReporter{}
		geo := &fakeGeocoder{results: map[string][]Location{"Paris": {{Name: "Paris", Country: "FR"}}}}
		svc := NewService(Dependencies{Geocoder: geo, Provider: &fakeProvider{err: upstream}, Reporter: rep}, Options{}, discardLogger())
		_, err := svc.GetWeather(context.Background(), "Paris")
		svc.Drain()

		var wf *WeatherFetchFailure
		require.ErrorAs(t, err, &wf)
		assert.Equal(t, "Paris", wf.Query)
		assert.ErrorIs(t, err, upstream)
		assert.Empty(t, rep.observations())
	})
}

func TestGetWeatherByCoords(t *testing.T) {
	t.Run("named by reverse geocoder", func(t *testing.T) {
		rep := &fakeReporter{}
		prov := &fakeProvider{reading: Reading{WeatherCode: 0}}
		svc := NewService(Dependencies{
			Geocoder: &fakeGeocoder{},
			Provider: prov,
			Reverse:  &fakeReverse{loc: Location{Name: "Berlin", Country: "Germany"}},
			Reporter: rep,
		}, Options{}, discardLogger())

		cc, err := svc.GetWeatherByCoords(context.Background(), 52.52, 13.405)
		require.NoError(t, err)
		svc.Drain()

		assert.Equal(t, "Berlin", cc.City)
		assert.Empty(t, cc.OriginalQuery)
		assert.Equal(t, "Clear sky", cc.Description)
		assert.Equal(t, Coordinates{Lat: 52.52, Lon: 13.405}, cc.Coordinates)
		require.Len(t, rep.observations(), 1)
		assert.Equal(t, SourceCoordinates, rep.observations()[0].Source)
		assert.Empty(t, rep.observations()[0].QueryLanguage)
	})

	t.Run("reverse failure keeps coordinates", func(t *testing.T) {
		svc := NewService(Dependencies{
			Provider: &fakeProvider{},
			Reverse:  &fakeReverse{err: errors.New("quota")},
		}, Options{}, discardLogger())

		cc, err := svc.GetWeatherByCoords(context.Background(), 1.5, 2.5)
		require.NoError(t, err)
		assert.Equal(t, unknownLocation, cc.City)
		assert.Equal(t, Coordinates{Lat: 1.5, Lon: 2.5}, cc.Coordinates)
	})
}

func TestGetForecast(t *testing.T) {
	var samples []Sample
	for _, d := range []string{"2024-05-01", "2024-05-02", "2024-05-03", "2024-05-04", "2024-05-05", "2024-05-06"} {
		samples = append(samples, hourlySeries(d, func(h int) float64 { return float64(h) }, 2)...)
	}
	geo := &fakeGeocoder{results: map[string][]Location{"Moskva": {moscow}}}
	prov := &fakeProvider{samples: samples}
	rep := &fakeReporter{}
	svc := NewService(Dependencies{Geocoder: geo, Provider: prov, Reporter: rep}, Options{}, discardLogger())

	fc, err := svc.GetForecast(context.Background(), "Москва")
	require.NoError(t, err)
	svc.Drain()

	assert.Equal(t, "Moscow", fc.City)
	assert.Equal(t, "RU", fc.Country)
	assert.Equal(t, ForecastHorizon, prov.hourlyDays)
	require.Len(t, fc.Days, ForecastHorizon)
	assert.Equal(t, "2024-05-01", fc.Days[0].Date)
	assert.Equal(t, "Переменная облачность", fc.Days[0].Description)
	assert.Empty(t, rep.observations(), "forecasts are not reported")
}

func TestSearchCities(t *testing.T) {
	locs := []Location{
		{Name: "Paris", Country: "France", Admin1: "Île-de-France", Latitude: 48.85, Longitude: 2.35},
		{Name: "Paris", Country: "United States", Admin1: "Texas", Latitude: 33.66, Longitude: -95.55},
	}
	geo := &fakeGeocoder{results: map[string][]Location{"Paris": locs}}
	svc := NewService(Dependencies{Geocoder: geo, Provider: &fakeProvider{}}, Options{}, discardLogger())

	got, err := svc.SearchCities(context.Background(), "Paris")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Candidate{Name: "Paris", LocalName: "Paris", Country: "United States", State: "Texas", Lat: 33.66, Lon: -95.55}, got[1])
	assert.Equal(t, SearchLimit, geo.calls[0].Count)

	got, err = svc.SearchCities(context.Background(), "Qwzx")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGeocode(t *testing.T) {
	geo := &fakeGeocoder{results: map[string][]Location{"Moskva": {moscow}}}
	svc := NewService(Dependencies{Geocoder: geo, Provider: &fakeProvider{}}, Options{}, discardLogger())

	got, err := svc.Geocode(context.Background(), "Москва")
	require.NoError(t, err)
	assert.Equal(t, []Location{moscow}, got)
	assert.Equal(t, GeocodeLimit, geo.calls[0].Count)

	_, err = svc.Geocode(context.Background(), "Qwzx")
	assert.ErrorIs(t, err, ErrNotFound)
}
