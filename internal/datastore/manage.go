package datastore

import (
	"gorm.io/gorm"

	"github.com/fishcast/fishcast-go/internal/errors"
)

// performAutoMigration creates or updates the schema for all persisted models.
func performAutoMigration(db *gorm.DB, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&HourlyWeather{}, &ScoreRecord{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", dbType).
			Context("connection", connectionInfo).
			Context("operation", "auto_migration").
			Build()
	}
	datastoreLogger.Info("Database schema ready", "db_type", dbType, "connection", connectionInfo)
	return nil
}
