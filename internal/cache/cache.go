// Package cache persists the single-slot fetch result with a 24-hour
// freshness window.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joshdurbin/runcoach/internal/db"
	"github.com/joshdurbin/runcoach/internal/models"
)

// TTL is the cache freshness window.
const TTL = 24 * time.Hour

// Store reads and writes the single cache slot.
type Store struct {
	queries *db.Queries
}

// NewStore creates a Store over the query set.
func NewStore(queries *db.Queries) *Store {
	return &Store{queries: queries}
}

// Fresh returns the cache entry if it is younger than TTL relative to now,
// or nil when the slot is empty or stale.
func (s *Store) Fresh(ctx context.Context, now time.Time) (*models.CacheEntry, error) {
	entry, err := s.Latest(ctx)
	if err != nil || entry == nil {
		return nil, err
	}
	if entry.Age(now) >= TTL {
		return nil, nil
	}
	return entry, nil
}

// Latest returns the cache entry regardless of age, or nil when the slot
// is empty. Callers using it past TTL own the staleness warning.
func (s *Store) Latest(ctx context.Context) (*models.CacheEntry, error) {
	slot, err := s.queries.GetCacheSlot(ctx)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cache slot: %w", err)
	}

	entry := &models.CacheEntry{
		FetchedAt: time.Unix(slot.FetchedAt, 0),
	}
	if err := json.Unmarshal([]byte(slot.Activities), &entry.Activities); err != nil {
		return nil, fmt.Errorf("decoding cached activities: %w", err)
	}
	if slot.Recommendation.Valid {
		if err := json.Unmarshal([]byte(slot.Recommendation.String), &entry.Recommendation); err != nil {
			return nil, fmt.Errorf("decoding cached recommendation: %w", err)
		}
	}
	return entry, nil
}

// Put overwrites the slot with the given entry.
func (s *Store) Put(ctx context.Context, entry *models.CacheEntry) error {
	activities, err := json.Marshal(entry.Activities)
	if err != nil {
		return fmt.Errorf("encoding activities: %w", err)
	}

	var recommendation sql.NullString
	if entry.Recommendation != nil {
		raw, err := json.Marshal(entry.Recommendation)
		if err != nil {
			return fmt.Errorf("encoding recommendation: %w", err)
		}
		recommendation = sql.NullString{String: string(raw), Valid: true}
	}

	return s.queries.SaveCacheSlot(ctx, db.SaveCacheSlotParams{
		Activities:     string(activities),
		Recommendation: recommendation,
		FetchedAt:      entry.FetchedAt.Unix(),
	})
}

// Clear removes the slot.
func (s *Store) Clear(ctx context.Context) error {
	return s.queries.DeleteCacheSlot(ctx)
}
