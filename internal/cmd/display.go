package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joshdurbin/runcoach/internal/analyzer"
	"github.com/joshdurbin/runcoach/internal/cache"
	"github.com/joshdurbin/runcoach/internal/coach"
	"github.com/joshdurbin/runcoach/internal/models"
)

func printRecommendation(result *coach.Result) {
	fmt.Println("=== Today's Run ===")

	if result.Stale {
		fmt.Printf("\nWarning: the activity API was unreachable; showing data fetched %s.\n",
			humanize.Time(result.FetchedAt))
	}

	if len(result.Activities) > 0 {
		weekly := analyzer.DetectWeeklyPattern(result.Activities)
		metrics := analyzer.Performance(result.Activities)
		timePatterns := analyzer.AnalyzeTimePatterns(result.Activities)

		fmt.Println("\nQuick analysis:")
		fmt.Printf("  - You typically run on %s\n", dayNames(weekly.FavoriteDays, 2))
		fmt.Printf("  - Average duration: %.0f minutes\n", metrics.AvgDurationMin)
		fmt.Printf("  - Most common start time: %s\n", timePatterns.MostCommonTime())
		if window, ok := analyzer.BestWindow(result.Activities); ok {
			fmt.Printf("  - Best performance: %s around %02d:00\n", window.Weekday, window.Hour)
		}
	}

	rec := result.Recommendation
	fmt.Println("\nRecommendation:")
	fmt.Printf("  Time:      %s\n", rec.TimeOfDay)
	fmt.Printf("  Duration:  %d minutes\n", rec.DurationMinutes)
	fmt.Printf("  Intensity: %s pace\n", rec.Intensity)
	fmt.Printf("  Route:     %s\n", rec.RouteHint)

	if rec.Insight != "" {
		fmt.Printf("\nInsight: %q\n", rec.Insight)
	}
	if rec.Motivation != "" {
		fmt.Printf("Motivation: %q\n", rec.Motivation)
	}

	if result.FromCache && !result.Stale {
		nextRefresh := result.FetchedAt.Add(cache.TTL)
		fmt.Printf("\nUsing cached data (saves API calls) | next refresh %s\n", humanize.Time(nextRefresh))
	}

	if rec.Source == models.SourceAI {
		fmt.Printf("Powered by: %s\n", rec.Model)
	} else {
		fmt.Println("Analysis: rule-based (no AI)")
	}
}

func dayNames(days []time.Weekday, limit int) string {
	if len(days) > limit {
		days = days[:limit]
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return strings.Join(names, " and ")
}
