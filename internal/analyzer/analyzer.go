// Package analyzer computes deterministic aggregates over recent runs and
// derives a rule-based recommendation from them. It never makes external
// calls and always succeeds.
package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/joshdurbin/runcoach/internal/models"
)

// Day period buckets for the time-of-day distribution.
const (
	PeriodEarlyMorning = "early morning"
	PeriodMorning      = "morning"
	PeriodAfternoon    = "afternoon"
	PeriodEvening      = "evening"
	PeriodNight        = "night"
)

// TimePatterns summarizes when the athlete usually runs.
type TimePatterns struct {
	MostCommonHour int
	Distribution   map[string]int
}

// MostCommonTime formats the dominant start hour as HH:00.
func (t TimePatterns) MostCommonTime() string {
	return fmt.Sprintf("%02d:00", t.MostCommonHour)
}

// WeeklyPattern summarizes which weekdays the athlete runs on.
type WeeklyPattern struct {
	FavoriteDays []time.Weekday
	RunsPerWeek  int
	DayCounts    map[time.Weekday]int
}

// Window is a weekday+hour bucket with its average pace.
type Window struct {
	Weekday      time.Weekday
	Hour         int
	PaceMinPerKm float64
	Runs         int
}

// Metrics holds overall performance aggregates.
type Metrics struct {
	TotalRuns       int
	TotalDistanceKm float64
	TotalTimeHours  float64
	AvgPaceMinPerKm float64
	AvgDistanceKm   float64
	AvgDurationMin  float64
	LongestRunKm    float64
}

// AnalyzeTimePatterns computes the dominant start hour and the time-of-day
// distribution. An empty list yields the 18:00 evening default.
func AnalyzeTimePatterns(activities []models.Activity) TimePatterns {
	patterns := TimePatterns{
		MostCommonHour: 18,
		Distribution:   map[string]int{},
	}
	if len(activities) == 0 {
		return patterns
	}

	counts := map[int]int{}
	for _, a := range activities {
		counts[a.StartHour]++
		patterns.Distribution[periodOf(a.StartHour)]++
	}

	best, bestCount := 18, 0
	for hour, count := range counts {
		if count > bestCount || (count == bestCount && hour < best) {
			best, bestCount = hour, count
		}
	}
	patterns.MostCommonHour = best

	return patterns
}

func periodOf(hour int) string {
	switch {
	case hour < 6:
		return PeriodEarlyMorning
	case hour < 12:
		return PeriodMorning
	case hour < 17:
		return PeriodAfternoon
	case hour < 21:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// DetectWeeklyPattern computes favorite weekdays and the weekly run rate.
// Favorite days are ordered by occurrence count; a tie is broken by the
// most recent occurrence of each weekday.
func DetectWeeklyPattern(activities []models.Activity) WeeklyPattern {
	if len(activities) == 0 {
		return WeeklyPattern{
			FavoriteDays: []time.Weekday{time.Tuesday, time.Thursday},
			RunsPerWeek:  3,
			DayCounts:    map[time.Weekday]int{},
		}
	}

	counts := map[time.Weekday]int{}
	latest := map[time.Weekday]string{} // YYYY-MM-DD sorts lexically
	for _, a := range activities {
		day := time.Weekday(a.Weekday)
		counts[day]++
		if a.Date > latest[day] {
			latest[day] = a.Date
		}
	}

	days := make([]time.Weekday, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		if counts[days[i]] != counts[days[j]] {
			return counts[days[i]] > counts[days[j]]
		}
		return latest[days[i]] > latest[days[j]]
	})
	if len(days) > 3 {
		days = days[:3]
	}

	return WeeklyPattern{
		FavoriteDays: days,
		RunsPerWeek:  runsPerWeek(activities),
		DayCounts:    counts,
	}
}

func runsPerWeek(activities []models.Activity) int {
	minDate, maxDate := activities[0].Date, activities[0].Date
	for _, a := range activities {
		if a.Date < minDate {
			minDate = a.Date
		}
		if a.Date > maxDate {
			maxDate = a.Date
		}
	}

	first, err1 := time.Parse("2006-01-02", minDate)
	last, err2 := time.Parse("2006-01-02", maxDate)
	if err1 != nil || err2 != nil {
		return len(activities)
	}

	rangeDays := int(last.Sub(first).Hours()/24) + 1
	weeks := float64(rangeDays) / 7
	if weeks <= 0 {
		return len(activities)
	}
	return int(math.Round(float64(len(activities)) / weeks))
}

// BestWindow returns the weekday+hour bucket with the fastest average pace.
// The second return is false when no bucket has a measurable distance.
func BestWindow(activities []models.Activity) (Window, bool) {
	type bucket struct {
		minutes  int
		distance float64
		runs     int
	}
	buckets := map[[2]int]*bucket{}

	for _, a := range activities {
		if a.DistanceKm <= 0 {
			continue
		}
		key := [2]int{a.Weekday, a.StartHour}
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.minutes += a.DurationMinutes
		b.distance += a.DistanceKm
		b.runs++
	}

	var best Window
	found := false
	for key, b := range buckets {
		pace := float64(b.minutes) / b.distance
		candidate := Window{
			Weekday:      time.Weekday(key[0]),
			Hour:         key[1],
			PaceMinPerKm: pace,
			Runs:         b.runs,
		}
		if !found || candidate.PaceMinPerKm < best.PaceMinPerKm {
			best = candidate
			found = true
		}
	}

	return best, found
}

// AverageDuration returns the mean run duration in whole minutes,
// defaulting to 30 for an empty list.
func AverageDuration(activities []models.Activity) int {
	if len(activities) == 0 {
		return 30
	}

	total := 0
	for _, a := range activities {
		total += a.DurationMinutes
	}
	return int(math.Round(float64(total) / float64(len(activities))))
}

// Performance computes overall aggregates for the activity list.
func Performance(activities []models.Activity) Metrics {
	m := Metrics{TotalRuns: len(activities)}
	if len(activities) == 0 {
		return m
	}

	var totalMinutes float64
	for _, a := range activities {
		m.TotalDistanceKm += a.DistanceKm
		totalMinutes += float64(a.DurationMinutes)
		if a.DistanceKm > m.LongestRunKm {
			m.LongestRunKm = a.DistanceKm
		}
	}

	m.TotalTimeHours = totalMinutes / 60
	m.AvgDistanceKm = m.TotalDistanceKm / float64(len(activities))
	m.AvgDurationMin = totalMinutes / float64(len(activities))
	if m.TotalDistanceKm > 0 {
		m.AvgPaceMinPerKm = totalMinutes / m.TotalDistanceKm
	}

	return m
}

// Recommend derives a recommendation from the activity history. An empty
// list yields the default beginner recommendation.
func Recommend(activities []models.Activity, rc models.Context) *models.Recommendation {
	if len(activities) == 0 {
		return DefaultRecommendation(rc)
	}

	timePatterns := AnalyzeTimePatterns(activities)
	weekly := DetectWeeklyPattern(activities)
	duration := AverageDuration(activities)

	favoriteToday := false
	for _, day := range weekly.FavoriteDays {
		if day == rc.Today {
			favoriteToday = true
			break
		}
	}

	confidence := 0.6
	if favoriteToday {
		confidence = 0.8
	}

	recommendedTime := timePatterns.MostCommonTime()
	if timePatterns.MostCommonHour < rc.CurrentHour {
		recommendedTime = "tomorrow " + recommendedTime
	}

	intensity := "moderate"
	switch {
	case rc.LastRunDaysAgo > 3:
		intensity = "easy"
		duration = int(float64(duration) * 0.8)
	case rc.LastRunDaysAgo == 0:
		intensity = "easy"
		duration = int(float64(duration) * 0.7)
	}

	insight := fmt.Sprintf("You typically run %d times per week, mostly in the %s around %s",
		weekly.RunsPerWeek, dominantPeriod(timePatterns.Distribution), timePatterns.MostCommonTime())

	var motivation string
	if favoriteToday {
		motivation = fmt.Sprintf("%s is one of your favorite running days - stay consistent!", rc.Today)
	} else {
		motivation = fmt.Sprintf("Mix it up today! Your usual days are %s", joinDays(weekly.FavoriteDays, 2))
	}

	return &models.Recommendation{
		TimeOfDay:       recommendedTime,
		DurationMinutes: duration,
		Intensity:       intensity,
		RouteHint:       "your usual neighborhood loop",
		Insight:         insight,
		Motivation:      motivation,
		Source:          models.SourceRules,
		Confidence:      confidence,
	}
}

// DefaultRecommendation is the fixed beginner recommendation used when no
// activity history is available.
func DefaultRecommendation(rc models.Context) *models.Recommendation {
	timeOfDay := "tomorrow 07:00"
	switch {
	case rc.CurrentHour < 12:
		timeOfDay = "07:00"
	case rc.CurrentHour < 17:
		timeOfDay = "18:00"
	}

	return &models.Recommendation{
		TimeOfDay:       timeOfDay,
		DurationMinutes: 30,
		Intensity:       "moderate",
		RouteHint:       "an easy, flat route near home",
		Insight:         "Start with a comfortable 30-minute run",
		Motivation:      "Every journey begins with a single step!",
		Source:          models.SourceRules,
	}
}

// WeeklyInsights produces up to three insight sentences from aggregates.
func WeeklyInsights(activities []models.Activity) []string {
	if len(activities) == 0 {
		return []string{"No activity data available"}
	}

	metrics := Performance(activities)
	weekly := DetectWeeklyPattern(activities)

	var insights []string

	insights = append(insights, fmt.Sprintf(
		"You've completed %d runs totaling %.1fkm in %.1f hours",
		metrics.TotalRuns, metrics.TotalDistanceKm, metrics.TotalTimeHours))

	if len(weekly.FavoriteDays) > 0 {
		insights = append(insights, fmt.Sprintf(
			"Your most consistent running days are %s", joinDays(weekly.FavoriteDays, 2)))
	}

	if metrics.AvgPaceMinPerKm > 0 {
		mins := int(metrics.AvgPaceMinPerKm)
		secs := int((metrics.AvgPaceMinPerKm - float64(mins)) * 60)
		insights = append(insights, fmt.Sprintf("Your average pace is %d:%02d per kilometer", mins, secs))
	}

	if len(insights) > 3 {
		insights = insights[:3]
	}
	return insights
}

func dominantPeriod(distribution map[string]int) string {
	best, bestCount := PeriodEvening, 0
	// Stable order so ties don't flip between runs.
	for _, period := range []string{PeriodEarlyMorning, PeriodMorning, PeriodAfternoon, PeriodEvening, PeriodNight} {
		if distribution[period] > bestCount {
			best, bestCount = period, distribution[period]
		}
	}
	return best
}

func joinDays(days []time.Weekday, limit int) string {
	if len(days) > limit {
		days = days[:limit]
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return strings.Join(names, " and ")
}
