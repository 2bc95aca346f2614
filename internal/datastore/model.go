// model.go defines the persisted data model for the application
package datastore

import "time"

// HourlyWeather is an observed weather sample persisted for score history.
type HourlyWeather struct {
	ID                       uint      `gorm:"primaryKey"`
	Time                     time.Time `gorm:"index:idx_hourly_weather_time"`
	Temperature              float64
	WindSpeed                float64
	WindGust                 float64
	CloudCover               float64
	PrecipitationProbability float64
	Pressure                 float64
}

// ScoreRecord is a computed fishing score persisted for history queries.
type ScoreRecord struct {
	ID        uint      `gorm:"primaryKey"`
	ScoredAt  time.Time `gorm:"index:idx_score_records_scored_at"`
	Date      string    `gorm:"index:idx_score_records_date"` // local calendar date, YYYY-MM-DD
	Mode      string    // freshwater or ocean
	Species   string    // species profile id, or comma separated list
	Score     float64
	Rating    string
	Safety    string // ocean mode only, empty for freshwater
	Summary   string
	Breakdown string `gorm:"type:text"` // component scores serialized as JSON
}
