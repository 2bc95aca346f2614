package conf

import (
	"fmt"
	"strconv"
	"time"
)

// ValidateSettings checks the loaded configuration for values the rest of
// the application cannot work with. It returns the first problem found.
func ValidateSettings(s *Settings) error {
	if s.Location.Latitude < -90 || s.Location.Latitude > 90 {
		return fmt.Errorf("location.latitude %.4f out of range [-90, 90]", s.Location.Latitude)
	}
	if s.Location.Longitude < -180 || s.Location.Longitude > 180 {
		return fmt.Errorf("location.longitude %.4f out of range [-180, 180]", s.Location.Longitude)
	}
	if s.Location.Timezone != "" {
		if _, err := time.LoadLocation(s.Location.Timezone); err != nil {
			return fmt.Errorf("location.timezone %q is not a valid IANA timezone: %w", s.Location.Timezone, err)
		}
	}

	switch s.Fishing.Mode {
	case ModeFreshwater, ModeOcean:
	default:
		return fmt.Errorf("fishing.mode %q must be %q or %q", s.Fishing.Mode, ModeFreshwater, ModeOcean)
	}

	switch s.Fishing.PeriodMode {
	case PeriodModeRemaining, PeriodModeFullDay:
	default:
		return fmt.Errorf("fishing.periodmode %q must be %q or %q", s.Fishing.PeriodMode, PeriodModeRemaining, PeriodModeFullDay)
	}

	if s.Fishing.ForecastDays < 1 || s.Fishing.ForecastDays > 7 {
		return fmt.Errorf("fishing.forecastdays %d out of range [1, 7]", s.Fishing.ForecastDays)
	}

	if s.Weather.Provider != "openmeteo" && s.Weather.Provider != "none" {
		return fmt.Errorf("weather.provider %q is not supported", s.Weather.Provider)
	}
	if s.Weather.PollInterval < time.Minute {
		return fmt.Errorf("weather.pollinterval %s is below the 1m minimum", s.Weather.PollInterval)
	}

	if s.WebServer.Enabled {
		port, err := strconv.Atoi(s.WebServer.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("webserver.port %q is not a valid TCP port", s.WebServer.Port)
		}
	}

	if s.Output.SQLite.Enabled && s.Output.SQLite.Path == "" {
		return fmt.Errorf("output.sqlite.path must be set when sqlite output is enabled")
	}

	return nil
}
