package db

import (
	"context"
	"database/sql"
)

// Queries wraps the database handle with the query set used by the app.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance over an open database.
func New(sqlDB *sql.DB) *Queries {
	return &Queries{db: sqlDB}
}

// AuthConfig is the single stored credential row.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	AccessToken  sql.NullString
	RefreshToken sql.NullString
	ExpiresAt    sql.NullInt64
}

// SaveAuthConfigParams are the values written by SaveAuthConfig.
type SaveAuthConfigParams struct {
	ClientID     string
	ClientSecret string
	AccessToken  sql.NullString
	RefreshToken sql.NullString
	ExpiresAt    sql.NullInt64
}

// SaveAuthConfig inserts or replaces the single auth config row.
func (q *Queries) SaveAuthConfig(ctx context.Context, arg SaveAuthConfigParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO auth_config (id, client_id, client_secret, access_token, refresh_token, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			client_id = excluded.client_id,
			client_secret = excluded.client_secret,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP`,
		arg.ClientID, arg.ClientSecret, arg.AccessToken, arg.RefreshToken, arg.ExpiresAt)
	return err
}

// GetAuthConfig returns the stored auth config, or sql.ErrNoRows when
// setup has never run.
func (q *Queries) GetAuthConfig(ctx context.Context) (AuthConfig, error) {
	var cfg AuthConfig
	err := q.db.QueryRowContext(ctx, `
		SELECT client_id, client_secret, access_token, refresh_token, expires_at
		FROM auth_config WHERE id = 1`).
		Scan(&cfg.ClientID, &cfg.ClientSecret, &cfg.AccessToken, &cfg.RefreshToken, &cfg.ExpiresAt)
	return cfg, err
}

// UpdateTokensParams are the values written by UpdateTokens.
type UpdateTokensParams struct {
	AccessToken  sql.NullString
	RefreshToken sql.NullString
	ExpiresAt    sql.NullInt64
}

// UpdateTokens replaces the token fields, preserving client credentials.
func (q *Queries) UpdateTokens(ctx context.Context, arg UpdateTokensParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE auth_config
		SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1`,
		arg.AccessToken, arg.RefreshToken, arg.ExpiresAt)
	return err
}

// DeleteAuthConfig removes the stored credentials and tokens.
func (q *Queries) DeleteAuthConfig(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM auth_config WHERE id = 1`)
	return err
}

// CacheSlot is the single cached fetch result row. Activities and
// Recommendation hold JSON documents; FetchedAt is a unix timestamp.
type CacheSlot struct {
	Activities     string
	Recommendation sql.NullString
	FetchedAt      int64
}

// SaveCacheSlotParams are the values written by SaveCacheSlot.
type SaveCacheSlotParams struct {
	Activities     string
	Recommendation sql.NullString
	FetchedAt      int64
}

// SaveCacheSlot inserts or replaces the single cache row.
func (q *Queries) SaveCacheSlot(ctx context.Context, arg SaveCacheSlotParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO recommendation_cache (id, activities, recommendation, fetched_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			activities = excluded.activities,
			recommendation = excluded.recommendation,
			fetched_at = excluded.fetched_at`,
		arg.Activities, arg.Recommendation, arg.FetchedAt)
	return err
}

// GetCacheSlot returns the cache row, or sql.ErrNoRows when none exists.
func (q *Queries) GetCacheSlot(ctx context.Context) (CacheSlot, error) {
	var slot CacheSlot
	err := q.db.QueryRowContext(ctx, `
		SELECT activities, recommendation, fetched_at
		FROM recommendation_cache WHERE id = 1`).
		Scan(&slot.Activities, &slot.Recommendation, &slot.FetchedAt)
	return slot, err
}

// DeleteCacheSlot removes the cache row.
func (q *Queries) DeleteCacheSlot(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM recommendation_cache WHERE id = 1`)
	return err
}
