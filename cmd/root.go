package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fishcast/fishcast-go/cmd/forecast"
	"github.com/fishcast/fishcast-go/cmd/score"
	"github.com/fishcast/fishcast-go/cmd/serve"
	"github.com/fishcast/fishcast-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fishcast",
		Short: "FishCast CLI",
		Long:  "Estimate fishing quality for a coordinate from weather, astronomy, tide and sea state.",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	rootCmd.AddCommand(
		score.Command(settings),
		forecast.Command(settings),
		serve.Command(settings),
	)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&settings.Location.Latitude, "latitude", viper.GetFloat64("location.latitude"), "Latitude of the fishing spot")
	pf.Float64Var(&settings.Location.Longitude, "longitude", viper.GetFloat64("location.longitude"), "Longitude of the fishing spot")
	pf.StringVar(&settings.Location.Timezone, "timezone", viper.GetString("location.timezone"), "IANA timezone of the spot, empty for UTC")
	pf.StringVar(&settings.Fishing.Mode, "mode", viper.GetString("fishing.mode"), "Scoring mode: freshwater or ocean")
	pf.StringSliceVar(&settings.Fishing.Species, "species", viper.GetStringSlice("fishing.species"), "Species profile ids to score")
	pf.StringVar(&settings.Fishing.SpeciesRegion, "region", viper.GetString("fishing.speciesregion"), "Species region searched first")
	pf.StringVar(&settings.Fishing.BodyType, "bodytype", viper.GetString("fishing.bodytype"), "Freshwater body type: lake, river, pond, reservoir")
	pf.StringVar(&settings.Fishing.HabitatPreset, "habitat", viper.GetString("fishing.habitatpreset"), "Ocean habitat preset: open_beach, rocky_point, harbour, reef")

	if err := viper.BindPFlags(pf); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}
