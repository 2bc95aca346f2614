// Package metrics provides weather service metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WeatherMetrics contains Prometheus metrics for weather and marine data operations
type WeatherMetrics struct {
	registry *prometheus.Registry

	// Weather data fetch metrics
	weatherFetchsTotal      *prometheus.CounterVec
	weatherFetchErrorsTotal *prometheus.CounterVec
	weatherFetchDuration    *prometheus.HistogramVec

	// Database operations metrics
	weatherDbOperationsTotal *prometheus.CounterVec
	weatherDbErrorsTotal     *prometheus.CounterVec
	weatherDbDuration        *prometheus.HistogramVec

	// Current conditions gauges
	weatherTemperatureGauge prometheus.Gauge
	weatherWindSpeedGauge   prometheus.Gauge
	weatherPressureGauge    prometheus.Gauge
	weatherCloudCoverGauge  prometheus.Gauge
}

// NewWeatherMetrics creates and registers new weather metrics
func NewWeatherMetrics(registry *prometheus.Registry) (*WeatherMetrics, error) {
	m := &WeatherMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *WeatherMetrics) initMetrics() error {
	// Weather data fetch metrics
	m.weatherFetchsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetches_total",
			Help: "Total number of weather data fetch operations",
		},
		[]string{"provider", "status"}, // status: success, error
	)

	m.weatherFetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetch_errors_total",
			Help: "Total number of weather fetch errors",
		},
		[]string{"provider", "error_type"},
	)

	m.weatherFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "weather_fetch_duration_seconds",
			Help: "Time taken to fetch weather data",
			// Buckets cover typical weather API response times: 100ms to ~100s
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
		[]string{"provider"},
	)

	// Database operations metrics
	m.weatherDbOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_db_operations_total",
			Help: "Total number of weather database operations",
		},
		[]string{"operation", "status"}, // operation: save_hourly_weather
	)

	m.weatherDbErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_db_errors_total",
			Help: "Total number of weather database errors",
		},
		[]string{"operation", "error_type"},
	)

	m.weatherDbDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "weather_db_duration_seconds",
			Help: "Time taken for weather database operations",
			// Buckets cover typical database operation times: 1ms to ~1s
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount10),
		},
		[]string{"operation"},
	)

	// Current conditions gauges
	m.weatherTemperatureGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "weather_temperature_celsius",
		Help: "Current air temperature in Celsius",
	})

	m.weatherWindSpeedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "weather_wind_speed_kmh",
		Help: "Current wind speed in kilometres per hour",
	})

	m.weatherPressureGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "weather_pressure_hpa",
		Help: "Current barometric pressure in hPa",
	})

	m.weatherCloudCoverGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "weather_cloud_cover_percentage",
		Help: "Current cloud cover percentage",
	})

	return nil
}

// Describe implements the Collector interface
func (m *WeatherMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.weatherFetchsTotal.Describe(ch)
	m.weatherFetchErrorsTotal.Describe(ch)
	m.weatherFetchDuration.Describe(ch)
	m.weatherDbOperationsTotal.Describe(ch)
	m.weatherDbErrorsTotal.Describe(ch)
	m.weatherDbDuration.Describe(ch)
	m.weatherTemperatureGauge.Describe(ch)
	m.weatherWindSpeedGauge.Describe(ch)
	m.weatherPressureGauge.Describe(ch)
	m.weatherCloudCoverGauge.Describe(ch)
}

// Collect implements the Collector interface
func (m *WeatherMetrics) Collect(ch chan<- prometheus.Metric) {
	m.weatherFetchsTotal.Collect(ch)
	m.weatherFetchErrorsTotal.Collect(ch)
	m.weatherFetchDuration.Collect(ch)
	m.weatherDbOperationsTotal.Collect(ch)
	m.weatherDbErrorsTotal.Collect(ch)
	m.weatherDbDuration.Collect(ch)
	m.weatherTemperatureGauge.Collect(ch)
	m.weatherWindSpeedGauge.Collect(ch)
	m.weatherPressureGauge.Collect(ch)
	m.weatherCloudCoverGauge.Collect(ch)
}

// RecordWeatherFetch records a weather fetch operation
func (m *WeatherMetrics) RecordWeatherFetch(provider, status string) {
	m.weatherFetchsTotal.WithLabelValues(provider, status).Inc()
}

// RecordWeatherFetchError records a weather fetch error
func (m *WeatherMetrics) RecordWeatherFetchError(provider, errorType string) {
	m.weatherFetchErrorsTotal.WithLabelValues(provider, errorType).Inc()
}

// RecordWeatherFetchDuration records the duration of a weather fetch operation
func (m *WeatherMetrics) RecordWeatherFetchDuration(provider string, duration float64) {
	m.weatherFetchDuration.WithLabelValues(provider).Observe(duration)
}

// RecordWeatherDbOperation records a weather database operation
func (m *WeatherMetrics) RecordWeatherDbOperation(operation, status string) {
	m.weatherDbOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordWeatherDbError records a weather database error
func (m *WeatherMetrics) RecordWeatherDbError(operation, errorType string) {
	m.weatherDbErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordWeatherDbDuration records the duration of a weather database operation
func (m *WeatherMetrics) RecordWeatherDbDuration(operation string, duration float64) {
	m.weatherDbDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateWeatherGauges updates the current conditions gauge values
func (m *WeatherMetrics) UpdateWeatherGauges(temperature, windSpeed, pressure, cloudCover float64) {
	m.weatherTemperatureGauge.Set(temperature)
	m.weatherWindSpeedGauge.Set(windSpeed)
	m.weatherPressureGauge.Set(pressure)
	m.weatherCloudCoverGauge.Set(cloudCover)
}
