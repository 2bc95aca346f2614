// Package conf loads and validates the application configuration from
// config.yaml and environment variables using viper.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings is the root configuration structure.
type Settings struct {
	Main      MainSettings
	Location  LocationSettings
	Fishing   FishingSettings
	Weather   WeatherSettings
	WebServer WebServerSettings
	Output    OutputSettings
}

// MainSettings contains application-wide options.
type MainSettings struct {
	Name string    // instance name used in logs and API responses
	Log  LogConfig // main application log
}

// LocationSettings is the fishing spot being scored.
type LocationSettings struct {
	Name      string  // display name for the spot
	Latitude  float64 // decimal degrees, positive north
	Longitude float64 // decimal degrees, positive east
	Timezone  string  // IANA timezone name, empty for UTC
	Elevation float64 // metres above sea level
}

// FishingSettings selects the scoring mode and target species.
type FishingSettings struct {
	Mode          string   // "freshwater" or "ocean"
	Species       []string // species profile ids to score
	SpeciesRegion string   // region id to search first
	BodyType      string   // freshwater: lake, river, pond, reservoir
	HabitatPreset string   // ocean: open_beach, rocky_point, harbour, reef
	PeriodMode    string   // "remaining" or "full_day"
	ForecastDays  int      // days of forecast to compute (1..7)
}

// WeatherSettings configures the weather and marine data sources.
type WeatherSettings struct {
	Provider     string        // weather provider id, "openmeteo"
	PollInterval time.Duration // how often the polling service refreshes
	OpenMeteo    OpenMeteoSettings
	Marine       MarineSettings
}

// OpenMeteoSettings holds the Open-Meteo forecast endpoint options.
type OpenMeteoSettings struct {
	Endpoint string // override for testing, empty for the public API
}

// MarineSettings holds the Open-Meteo marine endpoint options.
type MarineSettings struct {
	Enabled  bool   // fetch marine data (required for ocean mode)
	Endpoint string // override for testing, empty for the public API
}

// WebServerSettings configures the HTTP API server.
type WebServerSettings struct {
	Enabled bool
	Port    string
	Log     LogConfig
}

// OutputSettings configures result persistence.
type OutputSettings struct {
	SQLite SQLiteSettings
}

// SQLiteSettings configures the SQLite score history database.
type SQLiteSettings struct {
	Enabled bool
	Path    string
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled     bool         // true to enable this log
	Path        string       // Path to the log file
	Rotation    RotationType // Type of log rotation
	MaxSize     int64        // Max size in bytes for RotationSize
	RotationDay string       // Day of the week for RotationWeekly
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// Fishing mode values.
const (
	ModeFreshwater = "freshwater"
	ModeOcean      = "ocean"
)

// Period mode values.
const (
	PeriodModeRemaining = "remaining"
	PeriodModeFullDay   = "full_day"
)

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a new
// Settings instance and makes it the active one.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config to the first
// default config path and reads it back in.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(getDefaultConfig()), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SetTestSettings installs a settings instance directly, bypassing file
// loading. Only for tests.
func SetTestSettings(settings *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	once.Do(func() {})
	settingsInstance = settings
}

// SaveYAMLConfig writes settings to the YAML configuration file atomically.
// Comments and key ordering of an existing file are not preserved.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary config file: %w", err)
	}
	tempName := tempFile.Name()
	defer os.Remove(tempName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing temporary config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary config file: %w", err)
	}

	if err := os.Rename(tempName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}

// TimeLocation resolves the configured timezone, falling back to UTC.
func (l *LocationSettings) TimeLocation() *time.Location {
	if l.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
