// Package score implements the one-shot current score command.
package score

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fishcast/fishcast-go/internal/conf"
	"github.com/fishcast/fishcast-go/internal/datastore"
	"github.com/fishcast/fishcast-go/internal/engine"
	"github.com/fishcast/fishcast-go/internal/model"
	"github.com/fishcast/fishcast-go/internal/scoring"
)

const requestTimeout = 60 * time.Second

// Command creates the score command.
func Command(settings *conf.Settings) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the current fishing quality score",
		Long:  "Fetch current conditions and print the fishing quality score for the configured location.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	return cmd
}

func run(settings *conf.Settings, asJSON bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	db := datastore.New(settings)
	if db != nil {
		if err := db.Open(); err != nil {
			return err
		}
		defer db.Close()
	}

	e, err := engine.New(settings, db, nil)
	if err != nil {
		return err
	}

	report, err := e.Report(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func printReport(report *model.Report) {
	location := report.Location
	if location == "" {
		location = "configured location"
	}
	fmt.Printf("%s  (%s", location, report.Mode)
	if len(report.Species) > 0 {
		fmt.Printf(", %s", strings.Join(report.Species, ", "))
	}
	fmt.Println(")")

	fmt.Printf("Score: %.1f/10 (%s)\n", report.Score, scoring.RatingWord(report.Score))
	fmt.Println(report.Conditions)

	fmt.Println("\nComponents:")
	components := report.ComponentScores.Named()
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %4.1f\n", name, components[name])
	}

	if report.Tide.State != "" {
		fmt.Printf("\nTide: %s (strength %d, %s)\n",
			report.Tide.State, report.Tide.Strength, report.Tide.Confidence)
	}
	fmt.Printf("Updated: %s\n", report.LastUpdated)
}
