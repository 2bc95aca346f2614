// Package marine fetches sea state data from the Open-Meteo marine API and
// reduces it to current and daily wave records. Locations the marine model
// does not cover yield an explicit "unavailable" bundle rather than an error.
package marine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fishcast/fishcast-go/internal/cache"
	"github.com/fishcast/fishcast-go/internal/conf"
	"github.com/fishcast/fishcast-go/internal/errors"
	"github.com/fishcast/fishcast-go/internal/logging"
	"github.com/fishcast/fishcast-go/internal/model"
	"github.com/fishcast/fishcast-go/internal/observability/metrics"
)

var marineLogger *slog.Logger

func init() {
	var err error
	marineLogger, _, err = logging.NewFileLogger("logs/marine.log", "marine", slog.LevelDebug)
	if err != nil {
		logging.Error("Failed to initialize marine file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
		marineLogger = slog.New(fbHandler).With("service", "marine")
	}
}

const (
	MarineBaseURL  = "https://marine-api.open-meteo.com/v1/marine"
	providerName   = "openmeteo-marine"
	requestTimeout = 10 * time.Second
	retryDelay     = 2 * time.Second
	maxRetries     = 3

	bundleCacheKey = "marine:bundle"
	staleTTL       = 24 * time.Hour
)

var hourlyVars = []string{
	"wave_height", "wave_direction", "wave_period",
	"wind_wave_height", "wind_wave_direction", "wind_wave_period",
	"swell_wave_height", "swell_wave_direction", "swell_wave_period",
}

type marineResponse struct {
	Hourly map[string]json.RawMessage `json:"hourly"`
}

// Bundle pairs the reduced marine records with the raw hourly series used
// for timeline merging.
type Bundle struct {
	Data   model.MarineBundle
	Hourly *model.HourlySeries
}

// Service fetches and caches marine data for the configured location.
type Service struct {
	client   *http.Client
	store    *cache.Store
	settings *conf.Settings
	metrics  *metrics.WeatherMetrics
}

// NewService creates the marine service.
func NewService(settings *conf.Settings, store *cache.Store, m *metrics.WeatherMetrics) *Service {
	return &Service{
		client:   &http.Client{Timeout: requestTimeout},
		store:    store,
		settings: settings,
		metrics:  m,
	}
}

func (s *Service) endpoint() string {
	if s.settings.Weather.Marine.Endpoint != "" {
		return s.settings.Weather.Marine.Endpoint
	}
	return MarineBaseURL
}

// Unavailable returns the bundle used when marine data is disabled or the
// location is not covered by the marine model.
func Unavailable(now time.Time) *Bundle {
	return &Bundle{
		Data: model.MarineBundle{
			Current:     model.MarineRecord{Timestamp: model.IsoZ(now)},
			Forecast:    map[string]model.MarineDayAggregate{},
			Source:      "unavailable",
			LastUpdated: model.IsoZ(now),
		},
	}
}

// Fetch returns the cached marine bundle, fetching when cold. Fetch errors
// degrade to the unavailable bundle so ocean scoring can continue with wave
// defaults.
func (s *Service) Fetch(ctx context.Context, now time.Time) *Bundle {
	if !s.settings.Weather.Marine.Enabled {
		return Unavailable(now)
	}

	ttl := s.settings.Weather.PollInterval
	v, stale, err := s.store.FetchWithFallback(bundleCacheKey, ttl, func() (any, error) {
		return s.fetchBundle(ctx, now)
	})
	if err != nil {
		marineLogger.Warn("Marine fetch failed, continuing without sea state", "error", err)
		return Unavailable(now)
	}
	b := v.(*Bundle)
	if stale {
		marineLogger.Warn("Serving stale marine data after fetch failure", "last_updated", b.Data.LastUpdated)
	} else {
		s.store.Retain(bundleCacheKey, b, ttl, staleTTL)
	}
	return b
}

func (s *Service) fetchBundle(ctx context.Context, now time.Time) (*Bundle, error) {
	start := time.Now()
	series, err := s.fetchHourly(ctx)
	if s.metrics != nil {
		s.metrics.RecordWeatherFetchDuration(providerName, time.Since(start).Seconds())
		if err != nil {
			s.metrics.RecordWeatherFetch(providerName, "error")
		} else {
			s.metrics.RecordWeatherFetch(providerName, "success")
		}
	}
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Data: model.MarineBundle{
			Current:     currentRecord(series, now),
			Forecast:    dailyAggregates(series),
			Source:      providerName,
			LastUpdated: model.IsoZ(now),
		},
		Hourly: series,
	}, nil
}

// fetchHourly requests the marine hourly block with retries.
func (s *Service) fetchHourly(ctx context.Context) (*model.HourlySeries, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", s.settings.Location.Latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", s.settings.Location.Longitude))
	params.Set("hourly", strings.Join(hourlyVars, ","))
	params.Set("timezone", "UTC")
	params.Set("forecast_days", "7")

	apiURL := s.endpoint() + "?" + params.Encode()
	logger := marineLogger.With("provider", providerName)
	logger.Info("Fetching marine forecast", "url", apiURL)

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		isLastAttempt := i == maxRetries-1
		attemptLogger := logger.With("attempt", i+1, "max_attempts", maxRetries)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
		if err != nil {
			return nil, errors.New(err).
				Component("marine").
				Category(errors.CategoryNetwork).
				Context("operation", "create_http_request").
				Build()
		}
		req.Header.Set("User-Agent", "FishCast https://github.com/fishcast/fishcast-go")

		resp, err := s.client.Do(req)
		if err != nil {
			attemptLogger.Warn("HTTP request failed", "error", err)
			lastErr = err
			if !isLastAttempt {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(retryDelay):
				}
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			return nil, errors.New(fmt.Errorf("rate limited by provider (429)")).
				Component("marine").
				Category(errors.CategoryRateLimit).
				Context("operation", "marine_api_request").
				Build()
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			attemptLogger.Warn("Received non-OK status code", "status_code", resp.StatusCode)
			lastErr = fmt.Errorf("marine API returned %d: %.120s", resp.StatusCode, string(body))
			if !isLastAttempt {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(retryDelay):
				}
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, errors.New(err).
				Component("marine").
				Category(errors.CategoryNetwork).
				Context("operation", "read_response_body").
				Build()
		}
		return parseHourly(body)
	}

	return nil, errors.New(fmt.Errorf("marine fetch failed after %d attempts: %w", maxRetries, lastErr)).
		Component("marine").
		Category(errors.CategoryNetwork).
		Context("operation", "marine_api_request").
		Build()
}

func parseHourly(body []byte) (*model.HourlySeries, error) {
	var response marineResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.New(err).
			Component("marine").
			Category(errors.CategoryFileParsing).
			Context("operation", "unmarshal_marine_data").
			Build()
	}

	var times []string
	if raw, ok := response.Hourly["time"]; ok {
		if err := json.Unmarshal(raw, &times); err != nil {
			return nil, errors.New(err).
				Component("marine").
				Category(errors.CategoryFileParsing).
				Context("operation", "unmarshal_time_axis").
				Build()
		}
	}
	if len(times) == 0 {
		return nil, errors.Newf("no hourly data in marine response").
			Component("marine").
			Category(errors.CategoryValidation).
			Build()
	}

	series := &model.HourlySeries{Time: times, Values: map[string][]any{}}
	for _, name := range hourlyVars {
		raw, ok := response.Hourly[name]
		if !ok {
			continue
		}
		var vals []any
		if err := json.Unmarshal(raw, &vals); err != nil {
			marineLogger.Debug("Skipping unparseable marine variable", "variable", name, "error", err)
			continue
		}
		series.Values[name] = vals
	}
	return series, nil
}

// currentRecord picks the last hour at or before now.
func currentRecord(series *model.HourlySeries, now time.Time) model.MarineRecord {
	idx := -1
	for i, ts := range series.Time {
		t, ok := model.ParseTimeUTC(ts)
		if !ok || t.After(now) {
			break
		}
		idx = i
	}
	if idx < 0 {
		idx = 0
	}

	at := func(name string) *float64 {
		vals, ok := series.Values[name]
		if !ok || idx >= len(vals) {
			return nil
		}
		return model.FloatPtr(vals[idx])
	}

	ts := model.IsoZ(now)
	if idx < len(series.Time) {
		ts = model.NormalizeTimestamp(series.Time[idx], now)
	}
	return model.MarineRecord{
		WaveHeight:      at("wave_height"),
		WavePeriod:      at("wave_period"),
		WaveDirection:   at("wave_direction"),
		WindWaveHeight:  at("wind_wave_height"),
		WindWavePeriod:  at("wind_wave_period"),
		SwellWaveHeight: at("swell_wave_height"),
		SwellWavePeriod: at("swell_wave_period"),
		Timestamp:       ts,
	}
}

// dailyAggregates reduces the hourly series to per-day statistics over the
// non-null values.
func dailyAggregates(series *model.HourlySeries) map[string]model.MarineDayAggregate {
	type stats struct {
		min, max, sum float64
		n             int
	}
	collect := func(name string) map[string]*stats {
		byDate := map[string]*stats{}
		vals := series.Values[name]
		for i, ts := range series.Time {
			if i >= len(vals) {
				break
			}
			f, ok := model.ToFloat(vals[i])
			if !ok {
				continue
			}
			date, _, found := strings.Cut(ts, "T")
			if !found {
				continue
			}
			st, exists := byDate[date]
			if !exists {
				st = &stats{min: f, max: f}
				byDate[date] = st
			}
			if f < st.min {
				st.min = f
			}
			if f > st.max {
				st.max = f
			}
			st.sum += f
			st.n++
		}
		return byDate
	}

	waveHeight := collect("wave_height")
	wavePeriod := collect("wave_period")
	windWave := collect("wind_wave_height")
	swellWave := collect("swell_wave_height")

	dates := map[string]bool{}
	for d := range waveHeight {
		dates[d] = true
	}
	for d := range wavePeriod {
		dates[d] = true
	}

	out := make(map[string]model.MarineDayAggregate, len(dates))
	for date := range dates {
		var agg model.MarineDayAggregate
		if st := waveHeight[date]; st != nil && st.n > 0 {
			agg.WaveHeightMax = model.Float(st.max)
			agg.WaveHeightAvg = model.Float(st.sum / float64(st.n))
			agg.WaveHeightMin = model.Float(st.min)
		}
		if st := wavePeriod[date]; st != nil && st.n > 0 {
			agg.WavePeriodAvg = model.Float(st.sum / float64(st.n))
		}
		if st := windWave[date]; st != nil && st.n > 0 {
			agg.WindWaveHeightMax = model.Float(st.max)
		}
		if st := swellWave[date]; st != nil && st.n > 0 {
			agg.SwellWaveHeightMax = model.Float(st.max)
		}
		out[date] = agg
	}
	return out
}

// WaveConditionScore rates a wave height 0..100 against the habitat's safe
// maximum. Unknown height is neutral; anything above the maximum scores 0.
func WaveConditionScore(waveHeight *float64, maxHeight float64) float64 {
	if waveHeight == nil {
		return 50
	}
	h := *waveHeight
	switch {
	case h > maxHeight:
		return 0
	case h < 0.3:
		return 60
	case h < 0.5:
		return 80
	case h <= 1.5:
		return 100
	default:
		if maxHeight <= 1.5 {
			return 0
		}
		penalty := (h - 1.5) / (maxHeight - 1.5) * 100
		return model.Clamp(100-penalty, 0, 100)
	}
}
