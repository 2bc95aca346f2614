package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time checks that metric types satisfy the Recorder interface.
var _ Recorder = (*ScoringMetrics)(nil)

func TestScoringMetricsImplementsRecorder(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewScoringMetrics(registry)
	require.NoError(t, err)

	var recorder Recorder = m
	recorder.RecordOperation("current_score", LabelSuccess)
	recorder.RecordDuration("current_score", 0.015)
	recorder.RecordError("forecast", "validation")

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["scoring_operations_total"])
	assert.True(t, names["scoring_operation_duration_seconds"])
	assert.True(t, names["scoring_errors_total"])
}

func TestWeatherMetricsRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewWeatherMetrics(registry)
	require.NoError(t, err)

	m.RecordWeatherFetch("openmeteo", LabelSuccess)
	m.RecordWeatherFetchDuration("openmeteo", 0.25)
	m.UpdateWeatherGauges(18.5, 12.0, 1015.0, 40.0)

	families, err := registry.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if metric.GetGauge() != nil {
				values[mf.GetName()] = metric.GetGauge().GetValue()
			}
		}
	}
	assert.InDelta(t, 18.5, values["weather_temperature_celsius"], 0.001)
	assert.InDelta(t, 12.0, values["weather_wind_speed_kmh"], 0.001)
	assert.InDelta(t, 1015.0, values["weather_pressure_hpa"], 0.001)
	assert.InDelta(t, 40.0, values["weather_cloud_cover_percentage"], 0.001)
}

func TestDuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewScoringMetrics(registry)
	require.NoError(t, err)

	_, err = NewScoringMetrics(registry)
	assert.Error(t, err)
}
