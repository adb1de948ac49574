package models

import (
	"math"
	"testing"
	"time"
)

func TestNewContext(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC) // a Tuesday

	tests := []struct {
		name       string
		activities []Activity
		wantDays   int
	}{
		{"no activities", nil, 0},
		{"ran today", []Activity{{Date: "2025-06-10"}}, 0},
		{"ran yesterday", []Activity{{Date: "2025-06-09"}}, 1},
		{"ran four days ago", []Activity{{Date: "2025-06-06"}}, 4},
		{"unparseable date", []Activity{{Date: "not-a-date"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewContext(now, tt.activities)

			if c.Today != time.Tuesday {
				t.Errorf("expected Tuesday, got %v", c.Today)
			}
			if c.Date != "2025-06-10" || c.TimeNow != "09:30" || c.CurrentHour != 9 {
				t.Errorf("unexpected clock fields: %+v", c)
			}
			if c.LastRunDaysAgo != tt.wantDays {
				t.Errorf("expected %d days since last run, got %d", tt.wantDays, c.LastRunDaysAgo)
			}
		})
	}
}

func TestPaceMinPerKm(t *testing.T) {
	t.Parallel()

	a := Activity{DurationMinutes: 30, DistanceKm: 5.0}
	if got := a.PaceMinPerKm(); math.Abs(got-6.0) > 0.001 {
		t.Errorf("expected pace 6.0, got %v", got)
	}

	zero := Activity{DurationMinutes: 30}
	if got := zero.PaceMinPerKm(); got != 0 {
		t.Errorf("expected 0 pace for zero distance, got %v", got)
	}
}

func TestWeekdayName(t *testing.T) {
	t.Parallel()

	if got := (Activity{Weekday: 0}).WeekdayName(); got != "Sunday" {
		t.Errorf("expected Sunday, got %q", got)
	}
	if got := (Activity{Weekday: 2}).WeekdayName(); got != "Tuesday" {
		t.Errorf("expected Tuesday, got %q", got)
	}
}

func TestCacheEntryAge(t *testing.T) {
	t.Parallel()

	fetchedAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	entry := &CacheEntry{FetchedAt: fetchedAt}

	if got := entry.Age(fetchedAt.Add(3 * time.Hour)); got != 3*time.Hour {
		t.Errorf("expected 3h age, got %v", got)
	}
}
