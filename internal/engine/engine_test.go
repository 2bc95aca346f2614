package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishcast/fishcast-go/internal/astro"
	"github.com/fishcast/fishcast-go/internal/conf"
	"github.com/fishcast/fishcast-go/internal/model"
	"github.com/fishcast/fishcast-go/internal/observability"
)

var testNow = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

// fakeProviders serves canned Open-Meteo style weather and marine
// payloads covering two days from testNow's date.
func fakeProviders(t *testing.T) (weatherURL, marineURL string) {
	t.Helper()

	dayStart := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	const hours = 48

	times := make([]string, hours)
	temp := make([]float64, hours)
	wind := make([]float64, hours)
	gust := make([]float64, hours)
	cloud := make([]float64, hours)
	precip := make([]float64, hours)
	pressure := make([]float64, hours)
	wave := make([]float64, hours)
	wavePeriod := make([]float64, hours)
	for i := range times {
		times[i] = dayStart.Add(time.Duration(i) * time.Hour).Format("2006-01-02T15:04")
		temp[i] = 17.0
		wind[i] = 10.0
		gust[i] = 15.0
		cloud[i] = 50.0
		precip[i] = 10.0
		pressure[i] = 1016.0
		wave[i] = 1.0
		wavePeriod[i] = 8.0
	}

	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		payload := map[string]any{"hourly": map[string]any{
			"time":                      times,
			"temperature_2m":            temp,
			"wind_speed_10m":            wind,
			"wind_gusts_10m":            gust,
			"cloud_cover":               cloud,
			"precipitation_probability": precip,
			"pressure_msl":              pressure,
		}}
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	marineSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		payload := map[string]any{"hourly": map[string]any{
			"time":             times,
			"wave_height":      wave,
			"wave_period":      wavePeriod,
			"wind_wave_height": wave,
			"swell_wave_height": wave,
		}}
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	t.Cleanup(weatherSrv.Close)
	t.Cleanup(marineSrv.Close)
	return weatherSrv.URL, marineSrv.URL
}

func testSettings(t *testing.T, mode string) *conf.Settings {
	t.Helper()
	weatherURL, marineURL := fakeProviders(t)

	settings := &conf.Settings{
		Location: conf.LocationSettings{
			Name:      "Test Point",
			Latitude:  -36.85,
			Longitude: 174.76,
		},
		Fishing: conf.FishingSettings{
			Mode:          mode,
			Species:       []string{"snapper"},
			SpeciesRegion: "oceania",
			BodyType:      "lake",
			HabitatPreset: "rocky_point",
			PeriodMode:    conf.PeriodModeFullDay,
			ForecastDays:  2,
		},
		Weather: conf.WeatherSettings{
			Provider:     "openmeteo",
			PollInterval: 30 * time.Minute,
			OpenMeteo:    conf.OpenMeteoSettings{Endpoint: weatherURL},
			Marine:       conf.MarineSettings{Enabled: mode == conf.ModeOcean, Endpoint: marineURL},
		},
	}
	return settings
}

func newTestEngine(t *testing.T, mode string) *Engine {
	t.Helper()
	e, err := New(testSettings(t, mode), nil, nil,
		WithClock(clockwork.NewFakeClockAt(testNow)))
	require.NoError(t, err)
	return e
}

func TestReportOcean(t *testing.T) {
	e := newTestEngine(t, conf.ModeOcean)

	report, err := e.Report(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, report.Score, 0.0)
	assert.LessOrEqual(t, report.Score, 10.0)
	assert.Equal(t, conf.ModeOcean, report.Mode)
	assert.Equal(t, []string{"snapper"}, report.Species)
	assert.Equal(t, "Test Point", report.Location)
	assert.Equal(t, "2026-08-30T10:00:00Z", report.LastUpdated)
	assert.NotEmpty(t, report.Conditions)

	require.NotNil(t, report.Weather.Temperature)
	assert.InDelta(t, 17.0, *report.Weather.Temperature, 0.001)

	assert.NotEqual(t, model.TideUnknown, report.Tide.State)
	assert.NotEmpty(t, report.Tide.Forecast)

	require.Len(t, report.Forecast, 2)
	today := report.Forecast["2026-08-30"]
	assert.Len(t, today.Periods, 4, "full_day period mode keeps started periods")
	for _, period := range today.Periods {
		assert.GreaterOrEqual(t, period.Score, 0.0)
		assert.LessOrEqual(t, period.Score, 10.0)
		assert.NotEmpty(t, period.Safety)
	}
}

func TestReportFreshwater(t *testing.T) {
	e := newTestEngine(t, conf.ModeFreshwater)

	report, err := e.Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, conf.ModeFreshwater, report.Mode)
	assert.GreaterOrEqual(t, report.Score, 0.0)
	assert.LessOrEqual(t, report.Score, 10.0)
	assert.Equal(t, "unavailable", report.Marine.Source)

	require.Len(t, report.Forecast, 2)
	for _, day := range report.Forecast {
		assert.NotEmpty(t, day.Periods)
	}
}

func TestReportUpdatesMetrics(t *testing.T) {
	obs, err := observability.NewMetrics()
	require.NoError(t, err)

	e, err := New(testSettings(t, conf.ModeOcean), nil, obs,
		WithClock(clockwork.NewFakeClockAt(testNow)))
	require.NoError(t, err)

	_, err = e.Report(context.Background())
	require.NoError(t, err)

	families, err := obs.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["fishing_score"])
	assert.True(t, names["scoring_operations_total"])
	assert.True(t, names["weather_fetches_total"])
}

func TestForecastHonoursDayClamp(t *testing.T) {
	e := newTestEngine(t, conf.ModeOcean)

	assert.Equal(t, 2, e.forecastDays(0), "zero falls back to configured days")
	assert.Equal(t, 7, e.forecastDays(30))
	assert.Equal(t, 3, e.forecastDays(3))
}

func TestTideStateAndAstroDays(t *testing.T) {
	e := newTestEngine(t, conf.ModeOcean)

	rec := e.TideState(context.Background())
	assert.NotEmpty(t, rec.State)
	assert.Equal(t, "proxy", rec.Confidence)
	assert.NotEmpty(t, rec.Forecast)

	days := e.AstroDays(context.Background(), 3)
	require.Len(t, days, 3)
	_, ok := days["2026-08-30"]
	assert.True(t, ok)
}

func TestUnknownSpeciesFallsBack(t *testing.T) {
	settings := testSettings(t, conf.ModeOcean)
	settings.Fishing.Species = []string{"no_such_fish"}

	e, err := New(settings, nil, nil, WithClock(clockwork.NewFakeClockAt(testNow)))
	require.NoError(t, err)

	assert.Equal(t, "general_mixed", e.profile.ID)
}

func TestAstroRecordsFillSunEventsFromCivilTables(t *testing.T) {
	e := newTestEngine(t, conf.ModeFreshwater)

	// A day the event search left without sun events still gets civil
	// sunrise and sunset.
	records := e.astroRecords(map[string]astro.Day{
		"2026-08-30": {Date: "2026-08-30", MoonPhase: model.Float(0.5)},
	})
	rec, ok := records["2026-08-30"]
	require.True(t, ok)
	require.NotNil(t, rec.Sunrise)
	require.NotNil(t, rec.Sunset)
	_, ok = model.ParseTimeUTC(*rec.Sunrise)
	assert.True(t, ok)
	_, ok = model.ParseTimeUTC(*rec.Sunset)
	assert.True(t, ok)
}

func TestWeatherDaysOfReducesByDate(t *testing.T) {
	t.Parallel()

	hours := []model.MergedHour{
		{Time: "2026-08-30T00:00:00Z", Temperature: model.Float(10), WindGust: model.Float(20)},
		{Time: "2026-08-30T01:00:00Z", Temperature: model.Float(14), WindGust: model.Float(30)},
		{Time: "2026-08-31T00:00:00Z", Temperature: model.Float(8)},
	}

	days := weatherDaysOf(hours)
	require.Len(t, days, 2)

	day := days["2026-08-30"]
	require.NotNil(t, day.Temperature)
	assert.InDelta(t, 12.0, *day.Temperature, 0.001)
	require.NotNil(t, day.WindGust)
	assert.InDelta(t, 30.0, *day.WindGust, 0.001)
	assert.Equal(t, "2026-08-30T12:00:00Z", day.Time)
}
