// Package weather fetches hourly weather forecasts and reduces them to the
// records the scoring engine consumes.
package weather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fishcast/fishcast-go/internal/cache"
	"github.com/fishcast/fishcast-go/internal/conf"
	"github.com/fishcast/fishcast-go/internal/datastore"
	"github.com/fishcast/fishcast-go/internal/errors"
	"github.com/fishcast/fishcast-go/internal/logging"
	"github.com/fishcast/fishcast-go/internal/model"
	"github.com/fishcast/fishcast-go/internal/observability/metrics"
)

// Package-level logger for weather service
var (
	weatherLogger   *slog.Logger
	weatherLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	weatherLevelVar.Set(slog.LevelDebug)

	weatherLogger, _, err = logging.NewFileLogger("logs/weather.log", "weather", weatherLevelVar.Level())
	if err != nil {
		logging.Error("Failed to initialize weather file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: weatherLevelVar})
		weatherLogger = slog.New(fbHandler).With("service", "weather")
		logging.Warn("Weather service falling back to default logger due to file logger initialization error.")
	}
}

const (
	forecastCacheKey = "weather:forecast"
	cooldownCacheKey = "weather:cooldown"
	staleTTL         = 24 * time.Hour
	cooldownTTL      = 24 * time.Hour
)

// Forecast is a provider-independent hourly forecast.
type Forecast struct {
	Hourly    *model.HourlySeries
	FetchedAt time.Time
	Source    string
}

// Provider fetches an hourly forecast for the configured location.
type Provider interface {
	FetchForecast(ctx context.Context, settings *conf.Settings) (*Forecast, error)
}

// Service handles weather data operations: cached fetching, reduction to
// current conditions and daily summaries, and persistence.
type Service struct {
	provider Provider
	store    *cache.Store
	db       datastore.Interface
	settings *conf.Settings
	metrics  *metrics.WeatherMetrics
}

// NewService creates a weather service with the configured provider.
func NewService(settings *conf.Settings, store *cache.Store, db datastore.Interface, weatherMetrics *metrics.WeatherMetrics) (*Service, error) {
	var provider Provider

	switch settings.Weather.Provider {
	case "openmeteo":
		provider = NewOpenMeteoProvider()
	default:
		return nil, errors.New(fmt.Errorf("invalid weather provider: %s", settings.Weather.Provider)).
			Component("weather").
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Weather.Provider).
			Build()
	}

	return &Service{
		provider: provider,
		store:    store,
		db:       db,
		settings: settings,
		metrics:  weatherMetrics,
	}, nil
}

// Forecast returns the cached hourly forecast, fetching from the provider
// when the cache is cold. A rate-limited upstream puts the service into a
// cooldown during which only stale data is served.
func (s *Service) Forecast(ctx context.Context) (*Forecast, error) {
	providerName := s.settings.Weather.Provider
	ttl := s.settings.Weather.PollInterval

	if _, coolingDown := s.store.Get(cooldownCacheKey); coolingDown {
		if v, _, err := s.store.FetchWithFallback(forecastCacheKey, ttl, func() (any, error) {
			return nil, errors.Newf("weather provider in rate-limit cooldown").
				Component("weather").
				Category(errors.CategoryRateLimit).
				Build()
		}); err == nil {
			return v.(*Forecast), nil
		}
		return nil, errors.Newf("weather provider in rate-limit cooldown and no cached data").
			Component("weather").
			Category(errors.CategoryRateLimit).
			Build()
	}

	fetch := func() (any, error) {
		start := time.Now()
		f, err := s.provider.FetchForecast(ctx, s.settings)
		if s.metrics != nil {
			s.metrics.RecordWeatherFetchDuration(providerName, time.Since(start).Seconds())
		}
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordWeatherFetch(providerName, "error")
				s.metrics.RecordWeatherFetchError(providerName, string(errors.CategoryNetwork))
			}
			if errors.IsRateLimited(err) {
				weatherLogger.Warn("Weather provider rate limited, entering cooldown",
					"provider", providerName, "cooldown", cooldownTTL)
				s.store.Set(cooldownCacheKey, true, cooldownTTL)
			}
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.RecordWeatherFetch(providerName, "success")
		}
		return f, nil
	}

	v, stale, err := s.store.FetchWithFallback(forecastCacheKey, ttl, fetch)
	if err != nil {
		weatherLogger.Error("Failed to fetch weather data from provider",
			"provider", providerName, "error", err)
		return nil, err
	}
	f := v.(*Forecast)
	if stale {
		weatherLogger.Warn("Serving stale weather forecast after fetch failure",
			"provider", providerName, "fetched_at", f.FetchedAt)
	} else {
		s.store.Retain(forecastCacheKey, f, ttl, staleTTL)
	}
	return f, nil
}

// Current reduces the forecast to the record for the most recent hour at or
// before now.
func (s *Service) Current(ctx context.Context, now time.Time) (model.WeatherRecord, error) {
	f, err := s.Forecast(ctx)
	if err != nil {
		return model.WeatherRecord{Time: model.IsoZ(now)}, err
	}
	hours := model.NormalizeHourlyMerged(f.Hourly, nil, now)
	return currentFromHours(hours, now), nil
}

// currentFromHours picks the last hour at or before now, falling back to the
// first hour of the series.
func currentFromHours(hours []model.MergedHour, now time.Time) model.WeatherRecord {
	if len(hours) == 0 {
		return model.WeatherRecord{Time: model.IsoZ(now)}
	}
	pick := hours[0]
	for _, h := range hours {
		t, ok := model.ParseTimeUTC(h.Time)
		if !ok || t.After(now) {
			break
		}
		pick = h
	}
	rec := model.WeatherRecord{
		Temperature:              pick.Temperature,
		WindSpeed:                pick.WindSpeed,
		WindGust:                 pick.WindGust,
		CloudCover:               pick.CloudCover,
		PrecipitationProbability: pick.PrecipitationProbability,
		Pressure:                 pick.Pressure,
		Time:                     pick.Time,
	}
	if rec.WindGust == nil {
		rec.WindGust = rec.WindSpeed
	}
	return rec
}

// DaySummary is the reduction of one civil day's hours.
type DaySummary struct {
	Temperature              *float64 // mean
	WindSpeed                *float64 // mean
	WindGust                 *float64 // max
	CloudCover               *float64 // mean
	PrecipitationProbability *float64 // max
	Pressure                 *float64 // mean
}

// DailySummaries groups merged hours by ISO date and reduces each group:
// means for temperature, wind, cloud and pressure; maxima for gusts and
// precipitation probability.
func DailySummaries(hours []model.MergedHour) map[string]DaySummary {
	type acc struct {
		tempSum, tempN     float64
		windSum, windN     float64
		cloudSum, cloudN   float64
		pressSum, pressN   float64
		gustMax, precipMax *float64
	}
	byDate := map[string]*acc{}

	for _, h := range hours {
		date, _, ok := strings.Cut(h.Time, "T")
		if !ok {
			continue
		}
		a, exists := byDate[date]
		if !exists {
			a = &acc{}
			byDate[date] = a
		}
		if h.Temperature != nil {
			a.tempSum += *h.Temperature
			a.tempN++
		}
		if h.WindSpeed != nil {
			a.windSum += *h.WindSpeed
			a.windN++
		}
		if h.CloudCover != nil {
			a.cloudSum += *h.CloudCover
			a.cloudN++
		}
		if h.Pressure != nil {
			a.pressSum += *h.Pressure
			a.pressN++
		}
		if h.WindGust != nil && (a.gustMax == nil || *h.WindGust > *a.gustMax) {
			a.gustMax = h.WindGust
		}
		if h.PrecipitationProbability != nil && (a.precipMax == nil || *h.PrecipitationProbability > *a.precipMax) {
			a.precipMax = h.PrecipitationProbability
		}
	}

	mean := func(sum, n float64) *float64 {
		if n == 0 {
			return nil
		}
		return model.Float(sum / n)
	}

	out := make(map[string]DaySummary, len(byDate))
	for date, a := range byDate {
		out[date] = DaySummary{
			Temperature:              mean(a.tempSum, a.tempN),
			WindSpeed:                mean(a.windSum, a.windN),
			WindGust:                 a.gustMax,
			CloudCover:               mean(a.cloudSum, a.cloudN),
			PrecipitationProbability: a.precipMax,
			Pressure:                 mean(a.pressSum, a.pressN),
		}
	}
	return out
}

// SaveCurrent persists the current weather record.
func (s *Service) SaveCurrent(rec model.WeatherRecord) error {
	if s.db == nil {
		return nil
	}
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordWeatherDbDuration("save_hourly_weather", time.Since(start).Seconds())
		}
	}()

	t, ok := model.ParseTimeUTC(rec.Time)
	if !ok {
		t = time.Now().UTC()
	}
	hw := &datastore.HourlyWeather{
		Time:                     t,
		Temperature:              model.Deref(rec.Temperature, 0),
		WindSpeed:                model.Deref(rec.WindSpeed, 0),
		WindGust:                 model.Deref(rec.WindGust, 0),
		CloudCover:               model.Deref(rec.CloudCover, 0),
		PrecipitationProbability: model.Deref(rec.PrecipitationProbability, 0),
		Pressure:                 model.Deref(rec.Pressure, 0),
	}
	if err := validateWeatherRecord(hw); err != nil {
		return err
	}

	if err := s.db.SaveHourlyWeather(hw); err != nil {
		weatherLogger.Error("Failed to save hourly weather to database", "error", err, "time", hw.Time)
		if s.metrics != nil {
			s.metrics.RecordWeatherDbError("save_hourly_weather", "database_error")
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordWeatherDbOperation("save_hourly_weather", "success")
		s.metrics.UpdateWeatherGauges(hw.Temperature, hw.WindSpeed, hw.Pressure, hw.CloudCover)
	}
	return nil
}

// validateWeatherRecord performs basic validation before persistence.
func validateWeatherRecord(data *datastore.HourlyWeather) error {
	if data.Temperature < -273.15 {
		return errors.New(fmt.Errorf("temperature cannot be below absolute zero: %f", data.Temperature)).
			Component("weather").
			Category(errors.CategoryValidation).
			Context("temperature", fmt.Sprintf("%.2f", data.Temperature)).
			Build()
	}
	if data.WindSpeed < 0 {
		return errors.New(fmt.Errorf("wind speed cannot be negative: %f", data.WindSpeed)).
			Component("weather").
			Category(errors.CategoryValidation).
			Context("wind_speed", fmt.Sprintf("%.2f", data.WindSpeed)).
			Build()
	}
	return nil
}

// StartPolling refreshes the forecast on the configured interval until
// stopChan closes.
func (s *Service) StartPolling(stopChan <-chan struct{}) {
	interval := s.settings.Weather.PollInterval

	weatherLogger.Info("Starting weather polling service",
		"provider", s.settings.Weather.Provider,
		"interval", interval,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.refresh(); err != nil {
		weatherLogger.Warn("Initial weather fetch failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			weatherLogger.Info("Polling weather data...")
			if err := s.refresh(); err != nil {
				weatherLogger.Warn("Weather fetch poll failed", "error", err)
			}
		case <-stopChan:
			weatherLogger.Info("Stopping weather polling service")
			return
		}
	}
}

// refresh forces a forecast fetch and persists the current conditions.
func (s *Service) refresh() error {
	s.store.Delete(forecastCacheKey)

	ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout*time.Duration(MaxRetries+1))
	defer cancel()

	now := time.Now().UTC()
	rec, err := s.Current(ctx, now)
	if err != nil {
		return err
	}
	return s.SaveCurrent(rec)
}
