package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// setupTestDB opens a migrated temporary database.
func setupTestDB(t *testing.T) *Queries {
	t.Helper()

	sqlDB, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return New(sqlDB)
}

func TestAuthConfigRoundTrip(t *testing.T) {
	t.Parallel()

	queries := setupTestDB(t)
	ctx := context.Background()

	// Initially should not exist
	if _, err := queries.GetAuthConfig(ctx); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}

	err := queries.SaveAuthConfig(ctx, SaveAuthConfigParams{
		ClientID:     "client",
		ClientSecret: "secret",
		AccessToken:  sql.NullString{String: "access", Valid: true},
		RefreshToken: sql.NullString{String: "refresh", Valid: true},
		ExpiresAt:    sql.NullInt64{Int64: 12345, Valid: true},
	})
	if err != nil {
		t.Fatalf("failed to save auth config: %v", err)
	}

	cfg, err := queries.GetAuthConfig(ctx)
	if err != nil {
		t.Fatalf("failed to get auth config: %v", err)
	}
	if cfg.ClientID != "client" || cfg.ClientSecret != "secret" {
		t.Errorf("unexpected credentials: %q %q", cfg.ClientID, cfg.ClientSecret)
	}
	if !cfg.AccessToken.Valid || cfg.AccessToken.String != "access" {
		t.Error("access token not saved correctly")
	}
}

func TestSaveAuthConfigOverwrites(t *testing.T) {
	t.Parallel()

	queries := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"first", "second"} {
		err := queries.SaveAuthConfig(ctx, SaveAuthConfigParams{ClientID: id, ClientSecret: "s"})
		if err != nil {
			t.Fatalf("failed to save config %q: %v", id, err)
		}
	}

	cfg, err := queries.GetAuthConfig(ctx)
	if err != nil {
		t.Fatalf("failed to get config: %v", err)
	}
	if cfg.ClientID != "second" {
		t.Errorf("expected overwritten client ID 'second', got %q", cfg.ClientID)
	}
}

func TestUpdateTokensPreservesCredentials(t *testing.T) {
	t.Parallel()

	queries := setupTestDB(t)
	ctx := context.Background()

	err := queries.SaveAuthConfig(ctx, SaveAuthConfigParams{ClientID: "client", ClientSecret: "secret"})
	if err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	err = queries.UpdateTokens(ctx, UpdateTokensParams{
		AccessToken:  sql.NullString{String: "new_access", Valid: true},
		RefreshToken: sql.NullString{String: "new_refresh", Valid: true},
		ExpiresAt:    sql.NullInt64{Int64: 99999, Valid: true},
	})
	if err != nil {
		t.Fatalf("failed to update tokens: %v", err)
	}

	cfg, err := queries.GetAuthConfig(ctx)
	if err != nil {
		t.Fatalf("failed to get config: %v", err)
	}
	if cfg.AccessToken.String != "new_access" {
		t.Errorf("expected access token 'new_access', got %q", cfg.AccessToken.String)
	}
	if cfg.ClientID != "client" {
		t.Errorf("credentials not preserved, got client ID %q", cfg.ClientID)
	}
}

func TestDeleteAuthConfig(t *testing.T) {
	t.Parallel()

	queries := setupTestDB(t)
	ctx := context.Background()

	err := queries.SaveAuthConfig(ctx, SaveAuthConfigParams{ClientID: "client", ClientSecret: "secret"})
	if err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if err := queries.DeleteAuthConfig(ctx); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	if _, err := queries.GetAuthConfig(ctx); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows after delete, got %v", err)
	}
}

func TestCacheSlotRoundTrip(t *testing.T) {
	t.Parallel()

	queries := setupTestDB(t)
	ctx := context.Background()

	if _, err := queries.GetCacheSlot(ctx); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}

	err := queries.SaveCacheSlot(ctx, SaveCacheSlotParams{
		Activities:     `[{"date":"2025-06-10"}]`,
		Recommendation: sql.NullString{String: `{"source":"rules"}`, Valid: true},
		FetchedAt:      1749600000,
	})
	if err != nil {
		t.Fatalf("failed to save cache slot: %v", err)
	}

	slot, err := queries.GetCacheSlot(ctx)
	if err != nil {
		t.Fatalf("failed to get cache slot: %v", err)
	}
	if slot.FetchedAt != 1749600000 {
		t.Errorf("expected fetched_at 1749600000, got %d", slot.FetchedAt)
	}
	if slot.Activities != `[{"date":"2025-06-10"}]` {
		t.Errorf("unexpected activities payload: %q", slot.Activities)
	}
}

func TestCacheSlotOverwrite(t *testing.T) {
	t.Parallel()

	queries := setupTestDB(t)
	ctx := context.Background()

	for i, payload := range []string{`[]`, `[{"date":"2025-06-11"}]`} {
		err := queries.SaveCacheSlot(ctx, SaveCacheSlotParams{
			Activities: payload,
			FetchedAt:  int64(i),
		})
		if err != nil {
			t.Fatalf("failed to save cache slot %d: %v", i, err)
		}
	}

	slot, err := queries.GetCacheSlot(ctx)
	if err != nil {
		t.Fatalf("failed to get cache slot: %v", err)
	}
	if slot.Activities != `[{"date":"2025-06-11"}]` || slot.FetchedAt != 1 {
		t.Errorf("slot not overwritten: %+v", slot)
	}
}

func TestDeleteCacheSlot(t *testing.T) {
	t.Parallel()

	queries := setupTestDB(t)
	ctx := context.Background()

	err := queries.SaveCacheSlot(ctx, SaveCacheSlotParams{Activities: `[]`, FetchedAt: 1})
	if err != nil {
		t.Fatalf("failed to save cache slot: %v", err)
	}

	if err := queries.DeleteCacheSlot(ctx); err != nil {
		t.Fatalf("failed to delete cache slot: %v", err)
	}

	if _, err := queries.GetCacheSlot(ctx); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows after delete, got %v", err)
	}
}
