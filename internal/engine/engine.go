// Package engine orchestrates the data services and scoring strategies
// into complete fishing quality reports.
package engine

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fishcast/fishcast-go/internal/astro"
	"github.com/fishcast/fishcast-go/internal/cache"
	"github.com/fishcast/fishcast-go/internal/conf"
	"github.com/fishcast/fishcast-go/internal/datastore"
	"github.com/fishcast/fishcast-go/internal/logging"
	"github.com/fishcast/fishcast-go/internal/marine"
	"github.com/fishcast/fishcast-go/internal/model"
	"github.com/fishcast/fishcast-go/internal/observability"
	"github.com/fishcast/fishcast-go/internal/observability/metrics"
	"github.com/fishcast/fishcast-go/internal/scoring"
	"github.com/fishcast/fishcast-go/internal/species"
	"github.com/fishcast/fishcast-go/internal/suncalc"
	"github.com/fishcast/fishcast-go/internal/tide"
	"github.com/fishcast/fishcast-go/internal/weather"
)

var engineLogger = logging.ForService("engine")

const (
	cacheDefaultTTL     = 5 * time.Minute
	cacheCleanupEvery   = 10 * time.Minute
	maxForecastDays     = 7
	defaultForecastDays = 5
)

// Engine wires the fetchers, the species catalog and the scoring
// strategies for one configured location.
type Engine struct {
	settings *conf.Settings
	store    *cache.Store
	db       datastore.Interface
	weather  *weather.Service
	marine   *marine.Service
	tide     *tide.Proxy
	astro    *astro.Calculator
	sun      *suncalc.SunCalc
	metrics  *observability.Metrics
	profile  species.Profile
	tz       *time.Location
	clock    clockwork.Clock
}

// Option adjusts engine construction, mainly for tests.
type Option func(*Engine)

// WithClock substitutes the wall clock.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// New builds an engine from settings. The datastore and metrics may be
// nil; persistence and instrumentation are then skipped.
func New(settings *conf.Settings, db datastore.Interface, obs *observability.Metrics, opts ...Option) (*Engine, error) {
	tz := settings.Location.TimeLocation()
	store := cache.New(cacheDefaultTTL, cacheCleanupEvery)

	weatherMetrics := weatherMetricsOf(obs)
	weatherService, err := weather.NewService(settings, store, db, weatherMetrics)
	if err != nil {
		return nil, err
	}

	catalog, err := species.Load()
	if err != nil {
		engineLogger.Warn("Species catalog failed to load, using fallback", "error", err)
	}
	profiles := catalog.Resolve(settings.Fishing.Species, settings.Fishing.SpeciesRegion)
	profile := species.Aggregate(profiles)

	e := &Engine{
		settings: settings,
		store:    store,
		db:       db,
		weather:  weatherService,
		marine:   marine.NewService(settings, store, weatherMetrics),
		tide:     tide.NewProxy(settings.Location.Longitude),
		astro: astro.NewCalculator(astro.NewEphemeris(),
			settings.Location.Latitude, settings.Location.Longitude, tz),
		sun: suncalc.NewSunCalc(settings.Location.Latitude,
			settings.Location.Longitude, tz),
		metrics: obs,
		profile: profile,
		tz:      tz,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Report computes the current score, the period forecast and the
// supporting data records in one package.
func (e *Engine) Report(ctx context.Context) (*model.Report, error) {
	start := time.Now()
	now := e.clock.Now()
	days := e.forecastDays(0)
	mode := e.settings.Fishing.Mode

	current, err := e.weather.Current(ctx, now)
	if err != nil {
		e.recordOperation("current_score", "error", time.Since(start))
		e.recordError("current_score", "weather_fetch")
		return nil, err
	}

	marineBundle := e.marine.Fetch(ctx, now)
	astroDays := e.astro.Compute(ctx, now, days)
	astroRecords := e.astroRecords(astroDays)
	tideForecast := e.tide.Forecast(astroDays, e.tz)

	todayKey := now.In(e.tz).Format("2006-01-02")
	todayAstro := astroRecords[todayKey]
	tideNow := e.tide.Current(now, todayAstro.MoonPhase)
	tideNow.Forecast = tideForecast

	in := scoring.Inputs{
		Weather: current,
		Astro:   todayAstro,
		Tide:    &tideNow,
		Marine:  &marineBundle.Data.Current,
		Time:    now,
	}

	var result model.ScoringResult
	safety := ""
	if mode == conf.ModeOcean {
		oceanResult := e.oceanStrategy().Score(in)
		result = oceanResult.ScoringResult
		safety = oceanResult.Safety
		if safety == model.SafetyCaution || safety == model.SafetyUnsafe {
			e.recordSafetyCap(safety)
		}
	} else {
		result = scoring.Calculate(e.freshwaterStrategy(), in)
	}

	forecast := e.buildForecast(ctx, now, days, astroRecords, tideForecast, marineBundle)

	report := &model.Report{
		Score:           result.Score,
		Conditions:      result.ConditionsSummary,
		ComponentScores: result.ComponentScores,
		Weather:         current,
		Marine:          marineBundle.Data,
		Tide:            tideNow,
		Astro:           todayAstro,
		Forecast:        forecast,
		Mode:            mode,
		Species:         e.settings.Fishing.Species,
		Location:        e.settings.Location.Name,
		LastUpdated:     model.IsoZ(now.UTC()),
	}

	e.persist(now, todayKey, report, safety)
	if err := e.weather.SaveCurrent(current); err != nil {
		engineLogger.Warn("Failed to persist weather sample", "error", err)
	}

	e.recordOperation("current_score", "success", time.Since(start))
	if e.metrics != nil {
		e.metrics.Scoring.UpdateCurrentScore(mode, result.Score)
		e.metrics.Scoring.RecordForecastPeriods(mode, countPeriods(forecast))
	}
	return report, nil
}

// Forecast computes the period forecast for the requested number of
// days without packaging a full report.
func (e *Engine) Forecast(ctx context.Context, days int) (map[string]model.DailyForecast, error) {
	start := time.Now()
	now := e.clock.Now()
	days = e.forecastDays(days)

	marineBundle := e.marine.Fetch(ctx, now)
	astroDays := e.astro.Compute(ctx, now, days)
	astroRecords := e.astroRecords(astroDays)
	tideForecast := e.tide.Forecast(astroDays, e.tz)

	forecast := e.buildForecast(ctx, now, days, astroRecords, tideForecast, marineBundle)
	e.recordOperation("forecast", "success", time.Since(start))
	if e.metrics != nil {
		e.metrics.Scoring.RecordForecastPeriods(e.settings.Fishing.Mode, countPeriods(forecast))
	}
	return forecast, nil
}

// TideState returns the current tide record with the daily forecast
// attached.
func (e *Engine) TideState(ctx context.Context) model.TideRecord {
	now := e.clock.Now()
	astroDays := e.astro.Compute(ctx, now, e.forecastDays(0))
	todayKey := now.In(e.tz).Format("2006-01-02")

	var phase *float64
	if day, ok := astroDays[todayKey]; ok {
		phase = day.MoonPhase
	}
	rec := e.tide.Current(now, phase)
	rec.Forecast = e.tide.Forecast(astroDays, e.tz)
	return rec
}

// AstroDays returns the astronomical records for the requested days,
// keyed by ISO date.
func (e *Engine) AstroDays(ctx context.Context, days int) map[string]model.AstroRecord {
	now := e.clock.Now()
	return e.astroRecords(e.astro.Compute(ctx, now, e.forecastDays(days)))
}

// StartPolling runs the weather refresh loop until stopChan closes.
func (e *Engine) StartPolling(stopChan <-chan struct{}) {
	e.weather.StartPolling(stopChan)
}

// buildForecast scores the forecast days with the mode's strategy.
// Forecast data problems degrade to neutral defaults, never to an error.
func (e *Engine) buildForecast(
	ctx context.Context,
	now time.Time,
	days int,
	astroRecords map[string]model.AstroRecord,
	tideForecast map[string]model.TideDayRecord,
	marineBundle *marine.Bundle,
) map[string]model.DailyForecast {
	merged := e.mergedHours(ctx, now, marineBundle)

	if e.settings.Fishing.Mode == conf.ModeOcean {
		cond := scoring.ForecastConditions{
			Weather: weatherDaysOf(merged),
			Marine:  marineBundle.Data.Forecast,
			Tide:    tideForecast,
			Astro:   astroRecords,
		}
		includeStarted := e.settings.Fishing.PeriodMode == conf.PeriodModeFullDay
		return e.oceanStrategy().Forecast(now, days, cond, e.tideSampler(astroRecords), includeStarted)
	}

	forecaster := scoring.NewHourlyForecaster(e.profile, e.settings.Fishing.BodyType, e.tz)
	return forecaster.Forecast(now, days, merged, astroRecords)
}

// mergedHours fetches the weather forecast and merges it with the
// marine hourly series. A failed weather fetch yields an empty timeline.
func (e *Engine) mergedHours(ctx context.Context, now time.Time, marineBundle *marine.Bundle) []model.MergedHour {
	fc, err := e.weather.Forecast(ctx)
	if err != nil {
		engineLogger.Warn("Weather forecast unavailable, scoring with defaults", "error", err)
		e.recordError("forecast", "weather_fetch")
		return nil
	}
	return model.NormalizeHourlyMerged(fc.Hourly, marineBundle.Hourly, now)
}

// tideSampler resolves tide state at period starts using the real
// phase of the period's day when the astro forecast has one.
func (e *Engine) tideSampler(astroRecords map[string]model.AstroRecord) scoring.TideSampler {
	return func(t time.Time) *model.TideRecord {
		dateKey := t.In(e.tz).Format("2006-01-02")
		var phase *float64
		if day, ok := astroRecords[dateKey]; ok {
			phase = day.MoonPhase
		}
		rec := e.tide.Current(t, phase)
		return &rec
	}
}

func (e *Engine) oceanStrategy() *scoring.OceanStrategy {
	habitat := scoring.HabitatFor(e.settings.Fishing.HabitatPreset)
	return scoring.NewOceanStrategy(e.profile, habitat, e.tz)
}

func (e *Engine) freshwaterStrategy() *scoring.FreshwaterStrategy {
	return scoring.NewFreshwaterStrategy(e.profile, e.tz)
}

// persist appends the computed score to the history database.
func (e *Engine) persist(now time.Time, date string, report *model.Report, safety string) {
	if e.db == nil {
		return
	}
	breakdown, err := json.Marshal(report.ComponentScores)
	if err != nil {
		breakdown = []byte("{}")
	}
	record := &datastore.ScoreRecord{
		ScoredAt:  now.UTC(),
		Date:      date,
		Mode:      report.Mode,
		Species:   strings.Join(report.Species, ","),
		Score:     report.Score,
		Rating:    scoring.RatingWord(report.Score),
		Safety:    safety,
		Summary:   report.Conditions,
		Breakdown: string(breakdown),
	}
	if err := e.db.SaveScore(record); err != nil {
		engineLogger.Error("Failed to persist score record", "error", err, "date", date)
		e.recordError("current_score", "database")
	}
}

// forecastDays clamps the requested day count onto [1, maxForecastDays],
// falling back to the configured default.
func (e *Engine) forecastDays(requested int) int {
	days := requested
	if days <= 0 {
		days = e.settings.Fishing.ForecastDays
	}
	if days <= 0 {
		days = defaultForecastDays
	}
	if days > maxForecastDays {
		days = maxForecastDays
	}
	return days
}

func (e *Engine) recordOperation(operation, status string, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.Scoring.RecordOperation(operation, status)
	e.metrics.Scoring.RecordDuration(operation, elapsed.Seconds())
}

func (e *Engine) recordError(operation, errorType string) {
	if e.metrics != nil {
		e.metrics.Scoring.RecordError(operation, errorType)
	}
}

func (e *Engine) recordSafetyCap(level string) {
	if e.metrics != nil {
		e.metrics.Scoring.RecordSafetyCap(level)
	}
}

// astroRecords converts calculator days into canonical astro records.
// Sun events the event search could not place fall back to the civil
// sunrise and sunset tables so twilight scoring keeps a reference.
func (e *Engine) astroRecords(days map[string]astro.Day) map[string]model.AstroRecord {
	out := make(map[string]model.AstroRecord, len(days))
	for date, day := range days {
		rec := model.AstroRecord{
			MoonPhase:     day.MoonPhase,
			Moonrise:      isoPtr(day.Moonrise),
			Moonset:       isoPtr(day.Moonset),
			MoonTransit:   isoPtr(day.MoonTransit),
			MoonUnderfoot: isoPtr(day.MoonUnderfoot),
			Sunrise:       isoPtr(day.Sunrise),
			Sunset:        isoPtr(day.Sunset),
		}
		if rec.Sunrise == nil || rec.Sunset == nil {
			e.fillSunEvents(&rec, date)
		}
		out[date] = rec
	}
	return out
}

// fillSunEvents fills missing sunrise and sunset from the civil sun
// event calculator.
func (e *Engine) fillSunEvents(rec *model.AstroRecord, date string) {
	day, err := time.ParseInLocation("2006-01-02", date, e.tz)
	if err != nil {
		return
	}
	events, err := e.sun.GetSunEventTimes(day)
	if err != nil {
		engineLogger.Debug("civil sun events unavailable", "date", date, "error", err)
		return
	}
	if rec.Sunrise == nil {
		sunrise := events.Sunrise.UTC()
		rec.Sunrise = isoPtr(&sunrise)
	}
	if rec.Sunset == nil {
		sunset := events.Sunset.UTC()
		rec.Sunset = isoPtr(&sunset)
	}
}

func isoPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return model.TimePtr(*t)
}

// weatherDaysOf reduces the merged timeline to per-day weather records
// for ocean period scoring.
func weatherDaysOf(hours []model.MergedHour) map[string]model.WeatherRecord {
	summaries := weather.DailySummaries(hours)
	out := make(map[string]model.WeatherRecord, len(summaries))
	for date, s := range summaries {
		out[date] = model.WeatherRecord{
			Temperature:              s.Temperature,
			WindSpeed:                s.WindSpeed,
			WindGust:                 s.WindGust,
			CloudCover:               s.CloudCover,
			PrecipitationProbability: s.PrecipitationProbability,
			Pressure:                 s.Pressure,
			Time:                     date + "T12:00:00Z",
		}
	}
	return out
}

func weatherMetricsOf(obs *observability.Metrics) *metrics.WeatherMetrics {
	if obs == nil {
		return nil
	}
	return obs.Weather
}

func countPeriods(forecast map[string]model.DailyForecast) int {
	n := 0
	for _, day := range forecast {
		n += len(day.Periods)
	}
	return n
}
