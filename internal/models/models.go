// Package models holds the compressed domain types shared by the fetcher,
// analyzer, recommender and cache.
package models

import "time"

// Recommendation sources.
const (
	SourceAI    = "ai"
	SourceRules = "rules"
)

// Activity is one recorded run, trimmed to the attributes used for
// analysis and prompting.
type Activity struct {
	Date            string  `json:"date"`       // YYYY-MM-DD, local
	StartTime       string  `json:"start_time"` // HH:MM, local
	Weekday         int     `json:"weekday"`    // 0 = Sunday .. 6 = Saturday
	DurationMinutes int     `json:"duration_minutes"`
	DistanceKm      float64 `json:"distance_km"`
	StartHour       int     `json:"start_hour"`
	AvgSpeedKmh     float64 `json:"avg_speed_kmh,omitempty"`
}

// WeekdayName returns the English name for the activity's weekday.
func (a Activity) WeekdayName() string {
	return time.Weekday(a.Weekday).String()
}

// PaceMinPerKm returns the run's pace in minutes per kilometer,
// or 0 when the distance is zero.
func (a Activity) PaceMinPerKm() float64 {
	if a.DistanceKm <= 0 {
		return 0
	}
	return float64(a.DurationMinutes) / a.DistanceKm
}

// Recommendation is a single run suggestion, produced either by the AI
// recommender or by the rule-based analyzer.
type Recommendation struct {
	TimeOfDay       string  `json:"time_of_day"` // "HH:MM", possibly prefixed "tomorrow "
	DurationMinutes int     `json:"duration_minutes"`
	Intensity       string  `json:"intensity"` // easy, moderate, hard
	RouteHint       string  `json:"route_hint"`
	Insight         string  `json:"insight"`
	Motivation      string  `json:"motivation"`
	Source          string  `json:"source"` // "ai" or "rules"
	Model           string  `json:"model,omitempty"`
	Confidence      float64 `json:"confidence,omitempty"`
}

// CacheEntry is the single cached fetch result. Exactly one entry exists
// at a time; it is overwritten on every fresh fetch.
type CacheEntry struct {
	Activities     []Activity      `json:"activities"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	FetchedAt      time.Time       `json:"fetched_at"`
}

// Age returns how old the entry is relative to now.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Context captures the moment a recommendation is made for.
type Context struct {
	Today          time.Weekday // today's weekday
	Date           string       // YYYY-MM-DD
	TimeNow        string       // HH:MM
	CurrentHour    int
	LastRunDaysAgo int
}

// NewContext builds a Context from the wall clock and the activity list.
// Activities are expected newest first; an empty list leaves
// LastRunDaysAgo at zero.
func NewContext(now time.Time, activities []Activity) Context {
	c := Context{
		Today:       now.Weekday(),
		Date:        now.Format("2006-01-02"),
		TimeNow:     now.Format("15:04"),
		CurrentHour: now.Hour(),
	}

	if len(activities) > 0 {
		if last, err := time.ParseInLocation("2006-01-02", activities[0].Date, now.Location()); err == nil {
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			c.LastRunDaysAgo = int(midnight.Sub(last).Hours() / 24)
			if c.LastRunDaysAgo < 0 {
				c.LastRunDaysAgo = 0
			}
		}
	}

	return c
}
