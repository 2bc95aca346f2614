// Package forecast implements the multi-day forecast command.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fishcast/fishcast-go/internal/conf"
	"github.com/fishcast/fishcast-go/internal/engine"
	"github.com/fishcast/fishcast-go/internal/model"
)

const requestTimeout = 60 * time.Second

// Command creates the forecast command.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		days   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Compute the period forecast for the coming days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings, days, asJSON)
		},
	}

	cmd.Flags().IntVar(&days, "days", viper.GetInt("fishing.forecastdays"), "Number of days to forecast (1-7)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the forecast as JSON")
	return cmd
}

func run(settings *conf.Settings, days int, asJSON bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	e, err := engine.New(settings, nil, nil)
	if err != nil {
		return err
	}

	forecast, err := e.Forecast(ctx, days)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(forecast)
	}

	printForecast(forecast)
	return nil
}

func printForecast(forecast map[string]model.DailyForecast) {
	dates := make([]string, 0, len(forecast))
	for date := range forecast {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		day := forecast[date]
		fmt.Printf("%s %s  avg %.1f", date, day.DayName, day.DailyAvgScore)
		if day.BestPeriod != nil {
			fmt.Printf("  best %s (%.1f)", *day.BestPeriod, day.BestScore)
		}
		fmt.Println()

		names := make([]string, 0, len(day.Periods))
		for name := range day.Periods {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			return day.Periods[names[i]].Hours < day.Periods[names[j]].Hours
		})
		for _, name := range names {
			p := day.Periods[name]
			fmt.Printf("  %-10s %s  %4.1f", name, p.Hours, p.Score)
			if p.Safety != "" && p.Safety != model.SafetySafe {
				fmt.Printf("  [%s]", p.Safety)
			}
			fmt.Println()
		}
	}
}
