package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joshdurbin/runcoach/internal/models"
)

// completionServer serves an OpenAI-shaped chat completion whose message
// content is the given string.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, content)
	}))
	t.Cleanup(server.Close)
	return server
}

func testContext() models.Context {
	return models.Context{
		Today:          time.Tuesday,
		Date:           "2025-06-10",
		TimeNow:        "09:00",
		CurrentHour:    9,
		LastRunDaysAgo: 1,
	}
}

func testRuns() []models.Activity {
	return []models.Activity{
		{Date: "2025-06-09", StartTime: "18:30", Weekday: 1, DurationMinutes: 35, DistanceKm: 5.2, StartHour: 18},
		{Date: "2025-06-07", StartTime: "07:00", Weekday: 6, DurationMinutes: 30, DistanceKm: 5.0, StartHour: 7},
	}
}

func TestDailyRecommendation(t *testing.T) {
	t.Parallel()

	server := completionServer(t, `{"time":"18:00","duration":35,"intensity":"moderate","route":"park loop","insight":"You favor evening runs","motivation":"Keep it up!"}`)
	r := New("test-key", "test-model", server.URL)

	rec, err := r.DailyRecommendation(context.Background(), testRuns(), testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.TimeOfDay != "18:00" || rec.DurationMinutes != 35 || rec.Intensity != "moderate" {
		t.Errorf("unexpected recommendation: %+v", rec)
	}
	if rec.RouteHint != "park loop" {
		t.Errorf("expected route hint, got %q", rec.RouteHint)
	}
	if rec.Source != models.SourceAI {
		t.Errorf("expected ai source, got %q", rec.Source)
	}
	if rec.Model != "test-model" {
		t.Errorf("expected model name on recommendation, got %q", rec.Model)
	}
}

func TestDailyRecommendationFencedJSON(t *testing.T) {
	t.Parallel()

	content := "Here is your plan:\n```json\n{\"time\":\"07:00\",\"duration\":30,\"intensity\":\"easy\"}\n```"
	server := completionServer(t, content)
	r := New("test-key", "test-model", server.URL)

	rec, err := r.DailyRecommendation(context.Background(), testRuns(), testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.TimeOfDay != "07:00" || rec.Intensity != "easy" {
		t.Errorf("unexpected recommendation: %+v", rec)
	}
	if rec.RouteHint != "your usual neighborhood loop" {
		t.Errorf("expected default route hint, got %q", rec.RouteHint)
	}
}

func TestDailyRecommendationMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"prose only", "Go for a nice easy run this evening."},
		{"missing time", `{"duration":30,"intensity":"easy"}`},
		{"zero duration", `{"time":"18:00","duration":0,"intensity":"easy"}`},
		{"missing intensity", `{"time":"18:00","duration":30}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := completionServer(t, tt.content)
			r := New("test-key", "test-model", server.URL)

			_, err := r.DailyRecommendation(context.Background(), testRuns(), testContext())
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestDailyRecommendationServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	r := New("test-key", "test-model", server.URL)

	_, err := r.DailyRecommendation(context.Background(), testRuns(), testContext())
	if err == nil {
		t.Fatal("expected an error from a 503 endpoint")
	}
}

func TestWeeklyInsights(t *testing.T) {
	t.Parallel()

	server := completionServer(t, `{"insights":["You run mostly in the evening","Your distance is consistent","Try one longer weekend run"]}`)
	r := New("test-key", "test-model", server.URL)

	insights, err := r.WeeklyInsights(context.Background(), testRuns())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(insights))
	}
	if insights[0] != "You run mostly in the evening" {
		t.Errorf("unexpected first insight: %q", insights[0])
	}
}

func TestWeeklyInsightsMalformed(t *testing.T) {
	t.Parallel()

	server := completionServer(t, `{"insights":"not an array"}`)
	r := New("test-key", "test-model", server.URL)

	_, err := r.WeeklyInsights(context.Background(), testRuns())
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestParseRecommendation(t *testing.T) {
	t.Parallel()

	rec, err := parseRecommendation(`{"time":"18:00","duration":35,"intensity":"moderate","insight":"steady","motivation":"go"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Insight != "steady" || rec.Motivation != "go" {
		t.Errorf("unexpected parsed fields: %+v", rec)
	}
	if rec.RouteHint != "your usual neighborhood loop" {
		t.Errorf("expected default route, got %q", rec.RouteHint)
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", `Sure! {"a":1} Hope that helps.`, `{"a":1}`},
		{"prose around array", `Here you go: ["x","y"] enjoy`, `["x","y"]`},
		{"no json", "just words", "just words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractJSON(tt.content); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestDailyPrompt(t *testing.T) {
	t.Parallel()

	prompt := DailyPrompt(testRuns(), testContext())

	if !strings.Contains(prompt, "Mon 18:30 - 35min, 5.2km") {
		t.Errorf("expected formatted run line, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Today: Tuesday 2025-06-10 09:00") {
		t.Errorf("expected today line, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Last run: 1 days ago") {
		t.Errorf("expected last-run line, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "REQUIRED OUTPUT (JSON only)") {
		t.Error("expected output contract in prompt")
	}
}

func TestDailyPromptCapsRuns(t *testing.T) {
	t.Parallel()

	var activities []models.Activity
	for i := 0; i < 15; i++ {
		activities = append(activities, models.Activity{
			Date: "2025-06-01", StartTime: "07:00", Weekday: 0, DurationMinutes: 30, DistanceKm: 5.0,
		})
	}

	prompt := DailyPrompt(activities, testContext())

	if got := strings.Count(prompt, "Sun 07:00"); got != promptRunLimit {
		t.Errorf("expected %d run lines, got %d", promptRunLimit, got)
	}
}

func TestWeeklyPromptGroupsByDay(t *testing.T) {
	t.Parallel()

	activities := []models.Activity{
		{Weekday: 2, DurationMinutes: 35, DistanceKm: 5.2},
		{Weekday: 2, DurationMinutes: 30, DistanceKm: 5.0},
		{Weekday: 4, DurationMinutes: 32, DistanceKm: 4.8},
	}

	prompt := WeeklyPrompt(activities)

	if !strings.Contains(prompt, "Tuesday: 35min/5.2km, 30min/5.0km") {
		t.Errorf("expected grouped Tuesday line, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Thursday: 32min/4.8km") {
		t.Errorf("expected Thursday line, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"insights" key`) {
		t.Error("expected insights format instruction")
	}
}
