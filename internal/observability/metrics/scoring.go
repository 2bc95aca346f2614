// Package metrics provides scoring engine metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ScoringMetrics contains Prometheus metrics for score calculation operations
type ScoringMetrics struct {
	registry *prometheus.Registry

	// Score calculation metrics
	scoringOpsTotal    *prometheus.CounterVec
	scoringDuration    *prometheus.HistogramVec
	scoringErrorsTotal *prometheus.CounterVec

	// Score result metrics
	currentScoreGauge    *prometheus.GaugeVec
	forecastPeriodsTotal *prometheus.CounterVec
	safetyCapsTotal      *prometheus.CounterVec
}

// NewScoringMetrics creates and registers new scoring metrics
func NewScoringMetrics(registry *prometheus.Registry) (*ScoringMetrics, error) {
	m := &ScoringMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *ScoringMetrics) initMetrics() error {
	m.scoringOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_operations_total",
			Help: "Total number of scoring operations",
		},
		[]string{"operation", "status"}, // operation: current_score, forecast; status: success, error
	)

	m.scoringDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "scoring_operation_duration_seconds",
			Help: "Time taken for scoring operations",
			// Buckets cover typical in-process calculation times: 1ms to ~4s
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
		},
		[]string{"operation"},
	)

	m.scoringErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_errors_total",
			Help: "Total number of scoring errors",
		},
		[]string{"operation", "error_type"},
	)

	m.currentScoreGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fishing_score",
			Help: "Most recent fishing quality score on the 0-10 scale",
		},
		[]string{"mode"}, // mode: freshwater, ocean
	)

	m.forecastPeriodsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_periods_scored_total",
			Help: "Total number of forecast periods scored",
		},
		[]string{"mode"},
	)

	m.safetyCapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safety_caps_applied_total",
			Help: "Total number of scores capped by a safety assessment",
		},
		[]string{"level"}, // level: caution, unsafe
	)

	return nil
}

// Describe implements the Collector interface
func (m *ScoringMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.scoringOpsTotal.Describe(ch)
	m.scoringDuration.Describe(ch)
	m.scoringErrorsTotal.Describe(ch)
	m.currentScoreGauge.Describe(ch)
	m.forecastPeriodsTotal.Describe(ch)
	m.safetyCapsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *ScoringMetrics) Collect(ch chan<- prometheus.Metric) {
	m.scoringOpsTotal.Collect(ch)
	m.scoringDuration.Collect(ch)
	m.scoringErrorsTotal.Collect(ch)
	m.currentScoreGauge.Collect(ch)
	m.forecastPeriodsTotal.Collect(ch)
	m.safetyCapsTotal.Collect(ch)
}

// RecordOperation records a scoring operation with its status
func (m *ScoringMetrics) RecordOperation(operation, status string) {
	m.scoringOpsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration records the duration of a scoring operation in seconds
func (m *ScoringMetrics) RecordDuration(operation string, seconds float64) {
	m.scoringDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError records a scoring error with its type
func (m *ScoringMetrics) RecordError(operation, errorType string) {
	m.scoringErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// UpdateCurrentScore updates the most recent score gauge for a mode
func (m *ScoringMetrics) UpdateCurrentScore(mode string, score float64) {
	m.currentScoreGauge.WithLabelValues(mode).Set(score)
}

// RecordForecastPeriods adds to the count of scored forecast periods
func (m *ScoringMetrics) RecordForecastPeriods(mode string, periods int) {
	m.forecastPeriodsTotal.WithLabelValues(mode).Add(float64(periods))
}

// RecordSafetyCap records a score capped by a safety assessment
func (m *ScoringMetrics) RecordSafetyCap(level string) {
	m.safetyCapsTotal.WithLabelValues(level).Inc()
}
