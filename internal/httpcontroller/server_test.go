package httpcontroller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishcast/fishcast-go/internal/conf"
	"github.com/fishcast/fishcast-go/internal/engine"
	"github.com/fishcast/fishcast-go/internal/model"
	"github.com/fishcast/fishcast-go/internal/observability"
)

// fakeProviders serves canned provider payloads covering two days
// around the current time so engine fetches succeed.
func fakeProviders(t *testing.T) (weatherURL, marineURL string) {
	t.Helper()

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	const hours = 48

	times := make([]string, hours)
	flat := func(v float64) []float64 {
		vals := make([]float64, hours)
		for i := range vals {
			vals[i] = v
		}
		return vals
	}
	for i := range times {
		times[i] = dayStart.Add(time.Duration(i) * time.Hour).Format("2006-01-02T15:04")
	}

	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		payload := map[string]any{"hourly": map[string]any{
			"time":                      times,
			"temperature_2m":            flat(17),
			"wind_speed_10m":            flat(10),
			"wind_gusts_10m":            flat(15),
			"cloud_cover":               flat(50),
			"precipitation_probability": flat(10),
			"pressure_msl":              flat(1016),
		}}
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	marineSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		payload := map[string]any{"hourly": map[string]any{
			"time":              times,
			"wave_height":       flat(1),
			"wave_period":       flat(8),
			"wind_wave_height":  flat(0.3),
			"swell_wave_height": flat(0.6),
		}}
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	t.Cleanup(weatherSrv.Close)
	t.Cleanup(marineSrv.Close)
	return weatherSrv.URL, marineSrv.URL
}

func newTestServer(t *testing.T, metrics *observability.Metrics) *Server {
	t.Helper()
	weatherURL, marineURL := fakeProviders(t)

	settings := &conf.Settings{
		Main: conf.MainSettings{Name: "FishCast"},
		Location: conf.LocationSettings{
			Name:      "Test Point",
			Latitude:  -36.85,
			Longitude: 174.76,
		},
		Fishing: conf.FishingSettings{
			Mode:          conf.ModeOcean,
			Species:       []string{"snapper"},
			SpeciesRegion: "oceania",
			HabitatPreset: "rocky_point",
			PeriodMode:    conf.PeriodModeFullDay,
			ForecastDays:  2,
		},
		Weather: conf.WeatherSettings{
			Provider:     "openmeteo",
			PollInterval: 30 * time.Minute,
			OpenMeteo:    conf.OpenMeteoSettings{Endpoint: weatherURL},
			Marine:       conf.MarineSettings{Enabled: true, Endpoint: marineURL},
		},
		WebServer: conf.WebServerSettings{Enabled: true, Port: "8090"},
	}

	scoreEngine, err := engine.New(settings, nil, metrics)
	require.NoError(t, err)
	return New(settings, scoreEngine, metrics)
}

func doRequest(s *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestScoreEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, "/api/v1/score")
	require.Equal(t, http.StatusOK, rec.Code)

	var report model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.GreaterOrEqual(t, report.Score, 0.0)
	assert.LessOrEqual(t, report.Score, 10.0)
	assert.Equal(t, conf.ModeOcean, report.Mode)
	assert.Len(t, report.Forecast, 2)
}

func TestForecastEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, "/api/v1/forecast?days=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var forecast map[string]model.DailyForecast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forecast))
	assert.Len(t, forecast, 1)
}

func TestForecastRejectsBadDays(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusBadRequest, doRequest(s, "/api/v1/forecast?days=zero").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(s, "/api/v1/forecast?days=-1").Code)
}

func TestTideEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, "/api/v1/tide")
	require.Equal(t, http.StatusOK, rec.Code)

	var tide model.TideRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tide))
	assert.NotEmpty(t, tide.State)
	assert.Equal(t, "lunar_proxy", tide.Source)
}

func TestAstroEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, "/api/v1/astro?days=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var days map[string]model.AstroRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &days))
	assert.Len(t, days, 2)
}

func TestHealthzEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestMetricsEndpoint(t *testing.T) {
	metrics, err := observability.NewMetrics()
	require.NoError(t, err)
	s := newTestServer(t, metrics)

	require.Equal(t, http.StatusOK, doRequest(s, "/api/v1/score").Code)

	rec := doRequest(s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fishing_score")
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
