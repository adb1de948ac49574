package ai

import (
	"fmt"
	"strings"

	"github.com/joshdurbin/runcoach/internal/models"
)

// Keep prompts small: the free tier bills nothing but slow responses and
// truncation punish verbosity anyway.
const promptRunLimit = 10

const dailySystemPrompt = "You are a concise running coach. Analyze patterns and give ONE recommendation."

const weeklySystemPrompt = "You are a running coach analyzing training patterns."

// DailyPrompt builds the compact recommendation prompt: the newest runs,
// today's date and time, and the required JSON output shape.
func DailyPrompt(activities []models.Activity, rc models.Context) string {
	recent := activities
	if len(recent) > promptRunLimit {
		recent = recent[:promptRunLimit]
	}

	var lines []string
	for _, run := range recent {
		lines = append(lines, fmt.Sprintf("%s %s - %dmin, %.1fkm",
			run.WeekdayName()[:3], run.StartTime, run.DurationMinutes, run.DistanceKm))
	}

	return fmt.Sprintf(`Recent runs (newest first):
%s

Today: %s %s %s
Last run: %d days ago

REQUIRED OUTPUT (JSON only):
{
  "time": "HH:MM",
  "duration": minutes,
  "intensity": "easy/moderate/hard",
  "route": "brief route suggestion",
  "insight": "data-driven pattern observation",
  "motivation": "brief encouragement"
}`,
		strings.Join(lines, "\n"), rc.Today, rc.Date, rc.TimeNow, rc.LastRunDaysAgo)
}

// WeeklyPrompt builds the pattern-analysis prompt: runs grouped by weekday
// plus the requested output shape.
func WeeklyPrompt(activities []models.Activity) string {
	byDay := map[string][]string{}
	var order []string
	for _, run := range activities {
		day := run.WeekdayName()
		if _, seen := byDay[day]; !seen {
			order = append(order, day)
		}
		if len(byDay[day]) < 3 {
			byDay[day] = append(byDay[day], fmt.Sprintf("%dmin/%.1fkm", run.DurationMinutes, run.DistanceKm))
		}
	}

	var lines []string
	for _, day := range order {
		lines = append(lines, fmt.Sprintf("%s: %s", day, strings.Join(byDay[day], ", ")))
	}

	return fmt.Sprintf(`Analyze this runner's weekly patterns:
%s

Provide 3 specific insights about their training patterns, consistency, and areas for improvement.
Format: JSON array of strings under "insights" key.`, strings.Join(lines, "\n"))
}
