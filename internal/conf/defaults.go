package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig sets viper defaults for every configuration parameter.
func setDefaultConfig() {
	// Main
	viper.SetDefault("main.name", "FishCast")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/fishcast.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 10*1024*1024)
	viper.SetDefault("main.log.rotationday", "Sunday")

	// Location
	viper.SetDefault("location.name", "")
	viper.SetDefault("location.latitude", 0.0)
	viper.SetDefault("location.longitude", 0.0)
	viper.SetDefault("location.timezone", "")
	viper.SetDefault("location.elevation", 0.0)

	// Fishing
	viper.SetDefault("fishing.mode", ModeFreshwater)
	viper.SetDefault("fishing.species", []string{})
	viper.SetDefault("fishing.speciesregion", "")
	viper.SetDefault("fishing.bodytype", "lake")
	viper.SetDefault("fishing.habitatpreset", "rocky_point")
	viper.SetDefault("fishing.periodmode", PeriodModeRemaining)
	viper.SetDefault("fishing.forecastdays", 5)

	// Weather
	viper.SetDefault("weather.provider", "openmeteo")
	viper.SetDefault("weather.pollinterval", 30*time.Minute)
	viper.SetDefault("weather.openmeteo.endpoint", "")
	viper.SetDefault("weather.marine.enabled", true)
	viper.SetDefault("weather.marine.endpoint", "")

	// WebServer
	viper.SetDefault("webserver.enabled", false)
	viper.SetDefault("webserver.port", "8090")
	viper.SetDefault("webserver.log.enabled", true)
	viper.SetDefault("webserver.log.path", "logs/web.log")
	viper.SetDefault("webserver.log.rotation", RotationDaily)
	viper.SetDefault("webserver.log.maxsize", 10*1024*1024)

	// Output
	viper.SetDefault("output.sqlite.enabled", false)
	viper.SetDefault("output.sqlite.path", "fishcast.db")
}
