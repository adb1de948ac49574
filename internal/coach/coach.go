// Package coach sequences cache check, activity fetch, recommendation, and
// cache write for a single CLI invocation.
package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joshdurbin/runcoach/internal/analyzer"
	"github.com/joshdurbin/runcoach/internal/cache"
	"github.com/joshdurbin/runcoach/internal/logging"
	"github.com/joshdurbin/runcoach/internal/models"
	"github.com/joshdurbin/runcoach/internal/strava"
)

// Fetcher retrieves the recent run window from the activity API.
type Fetcher interface {
	RecentRuns(ctx context.Context, accessToken string) ([]models.Activity, error)
}

// TokenSource provides access tokens, refreshing as needed.
type TokenSource interface {
	GetValidAccessToken(ctx context.Context) (string, error)
	ForceRefresh(ctx context.Context) (string, error)
}

// Recommender asks a hosted model for recommendations and insights.
type Recommender interface {
	DailyRecommendation(ctx context.Context, activities []models.Activity, rc models.Context) (*models.Recommendation, error)
	WeeklyInsights(ctx context.Context, activities []models.Activity) ([]string, error)
}

// Store is the single-slot cache.
type Store interface {
	Fresh(ctx context.Context, now time.Time) (*models.CacheEntry, error)
	Latest(ctx context.Context) (*models.CacheEntry, error)
	Put(ctx context.Context, entry *models.CacheEntry) error
	Clear(ctx context.Context) error
}

// StalePolicy decides what happens when the cache is stale and the fetch
// fails: serve the stale entry with a warning, or fail the run.
type StalePolicy string

const (
	StaleServe StalePolicy = "serve"
	StaleFail  StalePolicy = "fail"
)

// ParseStalePolicy validates a policy flag value.
func ParseStalePolicy(s string) (StalePolicy, error) {
	switch StalePolicy(s) {
	case StaleServe, StaleFail:
		return StalePolicy(s), nil
	}
	return "", fmt.Errorf("invalid stale policy %q (want %q or %q)", s, StaleServe, StaleFail)
}

// Service is the orchestrator.
type Service struct {
	store       Store
	tokens      TokenSource
	fetcher     Fetcher
	ai          Recommender // nil when no API key is configured
	stalePolicy StalePolicy
	now         func() time.Time
}

// New creates a Service. ai may be nil to disable the AI path entirely.
func New(store Store, tokens TokenSource, fetcher Fetcher, ai Recommender, stalePolicy StalePolicy) *Service {
	return &Service{
		store:       store,
		tokens:      tokens,
		fetcher:     fetcher,
		ai:          ai,
		stalePolicy: stalePolicy,
		now:         time.Now,
	}
}

// WithClock overrides the wall clock (useful for testing).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Result is a recommendation plus the data it was derived from.
type Result struct {
	Recommendation *models.Recommendation
	Activities     []models.Activity
	FetchedAt      time.Time
	FromCache      bool
	Stale          bool
}

// Recommend runs the full pipeline: fresh cache short-circuits, otherwise
// fetch, decide between AI and rules, cache, and return. Recoverable AI
// failures never surface; auth and network failures do.
func (s *Service) Recommend(ctx context.Context, useAI bool) (*Result, error) {
	log := logging.Logger
	now := s.now()

	entry, err := s.store.Fresh(ctx, now)
	if err != nil {
		// A corrupt cache is a cache miss, not a fatal error.
		log.Warn().Err(err).Msg("cache read failed, refetching")
	}
	if entry != nil && entry.Recommendation != nil {
		log.Info().Time("fetched_at", entry.FetchedAt).Msg("using cached recommendation")
		return &Result{
			Recommendation: entry.Recommendation,
			Activities:     entry.Activities,
			FetchedAt:      entry.FetchedAt,
			FromCache:      true,
		}, nil
	}

	activities, err := s.fetchActivities(ctx)
	if err != nil {
		if CodeOf(err) == ErrAuthRequired {
			return nil, err
		}
		return s.recoverFromFetchFailure(ctx, now, err)
	}

	rc := models.NewContext(now, activities)
	rec := s.decide(ctx, useAI, activities, rc)

	fresh := &models.CacheEntry{
		Activities:     activities,
		Recommendation: rec,
		FetchedAt:      now,
	}
	if err := s.store.Put(ctx, fresh); err != nil {
		// The recommendation is already in hand; losing the cache write
		// only costs an extra fetch next time.
		log.Warn().Err(err).Msg("cache write failed")
	}

	return &Result{
		Recommendation: rec,
		Activities:     activities,
		FetchedAt:      now,
	}, nil
}

// Analysis is the weekly pattern view of the recent run window.
type Analysis struct {
	Activities   []models.Activity
	Metrics      analyzer.Metrics
	Weekly       analyzer.WeeklyPattern
	TimePatterns analyzer.TimePatterns
	BestWindow   *analyzer.Window
	Insights     []string
	Source       string // "ai" or "rules"
	FromCache    bool
}

// Analyze computes performance metrics and insights over the recent runs,
// reusing fresh cached activities when available.
func (s *Service) Analyze(ctx context.Context, useAI bool) (*Analysis, error) {
	log := logging.Logger
	now := s.now()

	var activities []models.Activity
	fromCache := false

	entry, err := s.store.Fresh(ctx, now)
	if err != nil {
		log.Warn().Err(err).Msg("cache read failed, refetching")
	}
	if entry != nil {
		activities = entry.Activities
		fromCache = true
	} else {
		activities, err = s.fetchActivities(ctx)
		if err != nil {
			if CodeOf(err) == ErrAuthRequired || s.stalePolicy == StaleFail {
				return nil, err
			}
			stale, lerr := s.store.Latest(ctx)
			if lerr != nil || stale == nil {
				return nil, err
			}
			log.Warn().
				Time("fetched_at", stale.FetchedAt).
				Msg("fetch failed, analyzing stale cached activities")
			activities = stale.Activities
			fromCache = true
		}
	}

	a := &Analysis{
		Activities:   activities,
		Metrics:      analyzer.Performance(activities),
		Weekly:       analyzer.DetectWeeklyPattern(activities),
		TimePatterns: analyzer.AnalyzeTimePatterns(activities),
		Source:       models.SourceRules,
		FromCache:    fromCache,
	}
	if window, ok := analyzer.BestWindow(activities); ok {
		a.BestWindow = &window
	}

	if useAI && s.ai != nil && len(activities) > 0 {
		insights, err := s.ai.WeeklyInsights(ctx, activities)
		if err == nil {
			a.Insights = insights
			a.Source = models.SourceAI
			return a, nil
		}
		log.Warn().Err(err).Msg("AI analysis failed, falling back to rules")
	}

	a.Insights = analyzer.WeeklyInsights(activities)
	return a, nil
}

// decide picks the AI path when requested and available, falling back to
// the rule-based analyzer on any AI failure.
func (s *Service) decide(ctx context.Context, useAI bool, activities []models.Activity, rc models.Context) *models.Recommendation {
	log := logging.Logger

	if len(activities) == 0 {
		log.Info().Msg("no recent runs, using default beginner recommendation")
		return analyzer.DefaultRecommendation(rc)
	}

	if useAI && s.ai != nil {
		rec, err := s.ai.DailyRecommendation(ctx, activities, rc)
		if err == nil {
			return rec
		}
		log.Warn().Err(err).Msg("AI recommendation failed, falling back to rules")
	}

	return analyzer.Recommend(activities, rc)
}

// fetchActivities obtains a valid token and fetches the recent run window,
// forcing exactly one token refresh and retry when the API rejects the
// token.
func (s *Service) fetchActivities(ctx context.Context) ([]models.Activity, error) {
	log := logging.Logger

	token, err := s.tokens.GetValidAccessToken(ctx)
	if err != nil {
		return nil, NewAuthError("authentication required, run `runcoach setup`", err)
	}

	activities, err := s.fetcher.RecentRuns(ctx, token)
	if errors.Is(err, strava.ErrUnauthorized) {
		log.Info().Msg("access token rejected, refreshing and retrying once")
		token, err = s.tokens.ForceRefresh(ctx)
		if err != nil {
			return nil, NewAuthError("token refresh failed, re-run `runcoach setup`", err)
		}
		activities, err = s.fetcher.RecentRuns(ctx, token)
		if errors.Is(err, strava.ErrUnauthorized) {
			return nil, NewAuthError("credentials rejected after refresh, re-run `runcoach setup`", err)
		}
	}
	if err != nil {
		if errors.Is(err, strava.ErrRateLimited) {
			return nil, NewRateLimitError(err)
		}
		return nil, NewNetworkError(err)
	}

	return activities, nil
}

// recoverFromFetchFailure applies the stale-cache policy after a
// network-class fetch failure.
func (s *Service) recoverFromFetchFailure(ctx context.Context, now time.Time, fetchErr error) (*Result, error) {
	log := logging.Logger

	if s.stalePolicy == StaleFail {
		return nil, fetchErr
	}

	stale, err := s.store.Latest(ctx)
	if err != nil || stale == nil || stale.Recommendation == nil {
		return nil, fetchErr
	}

	log.Warn().
		Err(fetchErr).
		Time("fetched_at", stale.FetchedAt).
		Msg("fetch failed, serving cached recommendation")

	return &Result{
		Recommendation: stale.Recommendation,
		Activities:     stale.Activities,
		FetchedAt:      stale.FetchedAt,
		FromCache:      true,
		Stale:          stale.Age(now) >= cache.TTL,
	}, nil
}
