// Package datastore persists weather samples and score history in SQLite
// through GORM.
package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fishcast/fishcast-go/internal/conf"
	"github.com/fishcast/fishcast-go/internal/errors"
)

// Interface defines the storage operations the rest of the application uses.
type Interface interface {
	Open() error
	Close() error
	SaveHourlyWeather(weather *HourlyWeather) error
	GetHourlyWeather(date string) ([]HourlyWeather, error)
	SaveScore(record *ScoreRecord) error
	LatestScore(mode string) (*ScoreRecord, error)
	ScoresBetween(start, end time.Time) ([]ScoreRecord, error)
}

// DataStore implements the storage operations shared by all database backends.
type DataStore struct {
	DB *gorm.DB
}

// New creates a datastore for the configured backend, or nil when score
// history persistence is disabled.
func New(settings *conf.Settings) Interface {
	if !settings.Output.SQLite.Enabled {
		return nil
	}
	return &SQLiteStore{Settings: settings}
}

// SaveHourlyWeather inserts a weather sample.
func (ds *DataStore) SaveHourlyWeather(weather *HourlyWeather) error {
	if ds.DB == nil {
		return notOpenError("save_hourly_weather")
	}
	if err := ds.DB.Create(weather).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_hourly_weather").
			Build()
	}
	return nil
}

// GetHourlyWeather returns the weather samples recorded on a UTC calendar
// date given as YYYY-MM-DD.
func (ds *DataStore) GetHourlyWeather(date string) ([]HourlyWeather, error) {
	if ds.DB == nil {
		return nil, notOpenError("get_hourly_weather")
	}
	dayStart, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, errors.New(fmt.Errorf("invalid date %q: %w", date, err)).
			Component("datastore").
			Category(errors.CategoryValidation).
			Context("operation", "get_hourly_weather").
			Build()
	}
	var samples []HourlyWeather
	err = ds.DB.Where("time >= ? AND time < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Order("time asc").
		Find(&samples).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_hourly_weather").
			Build()
	}
	return samples, nil
}

// SaveScore inserts a score history record.
func (ds *DataStore) SaveScore(record *ScoreRecord) error {
	if ds.DB == nil {
		return notOpenError("save_score")
	}
	if err := ds.DB.Create(record).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_score").
			Build()
	}
	return nil
}

// LatestScore returns the most recent score for a mode, or nil when no
// score has been recorded yet.
func (ds *DataStore) LatestScore(mode string) (*ScoreRecord, error) {
	if ds.DB == nil {
		return nil, notOpenError("latest_score")
	}
	var record ScoreRecord
	err := ds.DB.Where("mode = ?", mode).Order("scored_at desc").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "latest_score").
			Build()
	}
	return &record, nil
}

// ScoresBetween returns score records in the half open interval [start, end).
func (ds *DataStore) ScoresBetween(start, end time.Time) ([]ScoreRecord, error) {
	if ds.DB == nil {
		return nil, notOpenError("scores_between")
	}
	var records []ScoreRecord
	err := ds.DB.Where("scored_at >= ? AND scored_at < ?", start, end).
		Order("scored_at asc").
		Find(&records).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "scores_between").
			Build()
	}
	return records, nil
}

func notOpenError(operation string) error {
	return errors.New(fmt.Errorf("database connection is not initialized")).
		Component("datastore").
		Category(errors.CategoryState).
		Context("operation", operation).
		Build()
}
