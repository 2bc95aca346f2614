package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/fishcast/fishcast-go/internal/conf"
	"github.com/fishcast/fishcast-go/internal/errors"
	"github.com/fishcast/fishcast-go/internal/model"
)

const (
	OpenMeteoBaseURL      = "https://api.open-meteo.com/v1/forecast"
	openMeteoProviderName = "openmeteo"
	maxBodyPreviewSize    = 200

	RequestTimeout = 10 * time.Second
	UserAgent      = "FishCast https://github.com/fishcast/fishcast-go"
	RetryDelay     = 2 * time.Second
	MaxRetries     = 3
)

var openMeteoHourlyVars = []string{
	"temperature_2m",
	"wind_speed_10m",
	"wind_gusts_10m",
	"cloud_cover",
	"precipitation_probability",
	"pressure_msl",
}

// openMeteoResponse mirrors the subset of the Open-Meteo forecast payload we
// consume. Hourly values are kept untyped so nulls survive decoding.
type openMeteoResponse struct {
	Hourly struct {
		Time                     []string `json:"time"`
		Temperature2m            []any    `json:"temperature_2m"`
		WindSpeed10m             []any    `json:"wind_speed_10m"`
		WindGusts10m             []any    `json:"wind_gusts_10m"`
		CloudCover               []any    `json:"cloud_cover"`
		PrecipitationProbability []any    `json:"precipitation_probability"`
		PressureMsl              []any    `json:"pressure_msl"`
	} `json:"hourly"`
}

// OpenMeteoProvider fetches hourly forecasts from the Open-Meteo API.
type OpenMeteoProvider struct {
	client *http.Client
}

// NewOpenMeteoProvider creates a new Open-Meteo weather provider.
func NewOpenMeteoProvider() *OpenMeteoProvider {
	return &OpenMeteoProvider{
		client: &http.Client{Timeout: RequestTimeout},
	}
}

func (p *OpenMeteoProvider) endpoint(settings *conf.Settings) string {
	if settings.Weather.OpenMeteo.Endpoint != "" {
		return settings.Weather.OpenMeteo.Endpoint
	}
	return OpenMeteoBaseURL
}

// FetchForecast implements the Provider interface for OpenMeteoProvider.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, settings *conf.Settings) (*Forecast, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", settings.Location.Latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", settings.Location.Longitude))
	params.Set("hourly", joinVars(openMeteoHourlyVars))
	params.Set("wind_speed_unit", "kmh")
	params.Set("timezone", "UTC")
	params.Set("forecast_days", fmt.Sprintf("%d", 7))

	apiURL := p.endpoint(settings) + "?" + params.Encode()
	logger := weatherLogger.With("provider", openMeteoProviderName)
	logger.Info("Fetching weather forecast", "url", apiURL)

	body, err := fetchWithRetry(ctx, p.client, apiURL, openMeteoProviderName, logger)
	if err != nil {
		return nil, err
	}

	var response openMeteoResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, newWeatherError(err, errors.CategoryFileParsing, "unmarshal_weather_data", openMeteoProviderName)
	}

	if len(response.Hourly.Time) == 0 {
		return nil, newWeatherError(
			fmt.Errorf("no hourly data in forecast response"),
			errors.CategoryValidation,
			"validate_weather_response",
			openMeteoProviderName,
		)
	}

	series := &model.HourlySeries{
		Time: response.Hourly.Time,
		Values: map[string][]any{
			"temperature_2m":            response.Hourly.Temperature2m,
			"wind_speed_10m":            response.Hourly.WindSpeed10m,
			"wind_gusts_10m":            response.Hourly.WindGusts10m,
			"cloud_cover":               response.Hourly.CloudCover,
			"precipitation_probability": response.Hourly.PrecipitationProbability,
			"pressure_msl":              response.Hourly.PressureMsl,
		},
	}

	logger.Info("Successfully received and parsed weather forecast", "hours", len(series.Time))
	return &Forecast{
		Hourly:    series,
		FetchedAt: time.Now().UTC(),
		Source:    openMeteoProviderName,
	}, nil
}

func joinVars(vars []string) string {
	out := ""
	for i, v := range vars {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}

// fetchWithRetry performs a GET with the shared retry policy. HTTP 429 is
// returned immediately as a rate-limit error so callers can back off for
// longer than the retry delay.
func fetchWithRetry(ctx context.Context, client *http.Client, apiURL, provider string, logger *slog.Logger) ([]byte, error) {
	for i := 0; i < MaxRetries; i++ {
		isLastAttempt := i == MaxRetries-1
		attemptLogger := logger.With("attempt", i+1, "max_attempts", MaxRetries)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
		if err != nil {
			return nil, newWeatherError(err, errors.CategoryNetwork, "create_http_request", provider)
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := client.Do(req)
		if err != nil {
			attemptLogger.Warn("HTTP request failed", "error", err)
			if isLastAttempt {
				return nil, newWeatherErrorWithRetries(err, errors.CategoryNetwork, "weather_api_request", provider)
			}
			if sleepErr := sleepCtx(ctx, RetryDelay); sleepErr != nil {
				return nil, newWeatherError(sleepErr, errors.CategoryCancellation, "weather_api_request", provider)
			}
			continue
		}

		attemptLogger.Debug("Received HTTP response", "status_code", resp.StatusCode)

		if resp.StatusCode == http.StatusTooManyRequests {
			drainAndClose(resp, attemptLogger)
			return nil, errors.New(fmt.Errorf("rate limited by provider (429)")).
				Component("weather").
				Category(errors.CategoryRateLimit).
				Context("operation", "weather_api_request").
				Context("provider", provider).
				Build()
		}

		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			closeBody(resp, attemptLogger)
			attemptLogger.Warn("Received non-OK status code",
				"status_code", resp.StatusCode,
				"response_body", truncateBodyPreview(string(bodyBytes)))
			if isLastAttempt {
				return nil, errors.New(fmt.Errorf("received non-OK response (%d) after %d retries", resp.StatusCode, MaxRetries)).
					Component("weather").
					Category(errors.CategoryHTTP).
					Context("operation", "weather_api_response").
					Context("provider", provider).
					Context("status_code", fmt.Sprintf("%d", resp.StatusCode)).
					Build()
			}
			if sleepErr := sleepCtx(ctx, RetryDelay); sleepErr != nil {
				return nil, newWeatherError(sleepErr, errors.CategoryCancellation, "weather_api_request", provider)
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		closeBody(resp, attemptLogger)
		if err != nil {
			return nil, newWeatherError(err, errors.CategoryNetwork, "read_response_body", provider)
		}
		return body, nil
	}

	return nil, newWeatherErrorWithRetries(
		fmt.Errorf("max retries exceeded"),
		errors.CategoryNetwork,
		"weather_api_request",
		provider,
	)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func drainAndClose(resp *http.Response, logger *slog.Logger) {
	_, _ = io.Copy(io.Discard, resp.Body)
	closeBody(resp, logger)
}

func closeBody(resp *http.Response, logger *slog.Logger) {
	if err := resp.Body.Close(); err != nil {
		logger.Debug("Failed to close response body", "error", err)
	}
}

// truncateBodyPreview truncates response body for logging
func truncateBodyPreview(body string) string {
	if len(body) > maxBodyPreviewSize {
		return body[:maxBodyPreviewSize] + "... (truncated)"
	}
	return body
}

// newWeatherError creates a standardized weather error with common fields
func newWeatherError(err error, category errors.ErrorCategory, operation, provider string) error {
	return errors.New(err).
		Component("weather").
		Category(category).
		Context("operation", operation).
		Context("provider", provider).
		Build()
}

// newWeatherErrorWithRetries creates a weather error that includes retry information
func newWeatherErrorWithRetries(err error, category errors.ErrorCategory, operation, provider string) error {
	return errors.New(err).
		Component("weather").
		Category(category).
		Context("operation", operation).
		Context("provider", provider).
		Context("max_retries", fmt.Sprintf("%d", MaxRetries)).
		Build()
}
