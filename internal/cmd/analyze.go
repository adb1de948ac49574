package cmd

import (
	"fmt"

	"github.com/joshdurbin/runcoach/internal/coach"
	"github.com/joshdurbin/runcoach/internal/models"
	"github.com/spf13/cobra"
)

var analyzeFree bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze weekly running patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		svc := a.newCoach(coach.StaleServe)

		analysis, err := svc.Analyze(ctx, !analyzeFree)
		if err != nil {
			return err
		}

		fmt.Println("=== Weekly Pattern Analysis ===")

		m := analysis.Metrics
		fmt.Printf("\nPerformance summary (%d runs analyzed):\n", m.TotalRuns)
		if m.TotalRuns > 0 {
			fmt.Printf("  Total distance:  %.1f km\n", m.TotalDistanceKm)
			fmt.Printf("  Total time:      %.1f hours\n", m.TotalTimeHours)
			fmt.Printf("  Average pace:    %.1f min/km\n", m.AvgPaceMinPerKm)
			fmt.Printf("  Average run:     %.1f km in %.0f minutes\n", m.AvgDistanceKm, m.AvgDurationMin)
			fmt.Printf("  Longest run:     %.1f km\n", m.LongestRunKm)
		}

		if analysis.BestWindow != nil {
			w := analysis.BestWindow
			fmt.Printf("  Best window:     %s around %02d:00 (%.1f min/km over %d runs)\n",
				w.Weekday, w.Hour, w.PaceMinPerKm, w.Runs)
		}

		fmt.Println("\nInsights:")
		for i, insight := range analysis.Insights {
			fmt.Printf("  %d. %s\n", i+1, insight)
		}

		if analysis.Source == models.SourceAI {
			fmt.Println("\nAnalysis by: AI")
		} else {
			fmt.Println("\nAnalysis: rule-based")
		}

		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeFree, "free", false, "use rule-based analysis only (no model API call)")
}
