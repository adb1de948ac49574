package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joshdurbin/runcoach/internal/db"
	"github.com/joshdurbin/runcoach/internal/logging"
)

// ErrNotAuthenticated indicates no usable credentials are stored.
// Callers surface it as a "run `runcoach setup`" message.
var ErrNotAuthenticated = fmt.Errorf("not authenticated: run `runcoach setup` first")

// Storage persists Strava credentials and tokens in SQLite.
type Storage struct {
	queries *db.Queries
}

// NewStorage creates a Storage over the query set.
func NewStorage(queries *db.Queries) *Storage {
	return &Storage{queries: queries}
}

// StoredTokens is the token pair as read back from the database.
type StoredTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// ClientConfig holds the Strava application credentials.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
}

// SaveFullConfig saves client credentials and tokens together.
func (s *Storage) SaveFullConfig(ctx context.Context, clientID, clientSecret string, tokens *TokenPair) error {
	return s.queries.SaveAuthConfig(ctx, db.SaveAuthConfigParams{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AccessToken:  sql.NullString{String: tokens.AccessToken, Valid: true},
		RefreshToken: sql.NullString{String: tokens.RefreshToken, Valid: true},
		ExpiresAt:    sql.NullInt64{Int64: tokens.ExpiresAt, Valid: true},
	})
}

// SaveTokens updates the token fields on the existing config row.
func (s *Storage) SaveTokens(ctx context.Context, tokens *TokenPair) error {
	_, err := s.queries.GetAuthConfig(ctx)
	if err == sql.ErrNoRows {
		return ErrNotAuthenticated
	}
	if err != nil {
		return fmt.Errorf("checking existing config: %w", err)
	}

	return s.queries.UpdateTokens(ctx, db.UpdateTokensParams{
		AccessToken:  sql.NullString{String: tokens.AccessToken, Valid: true},
		RefreshToken: sql.NullString{String: tokens.RefreshToken, Valid: true},
		ExpiresAt:    sql.NullInt64{Int64: tokens.ExpiresAt, Valid: true},
	})
}

// LoadTokens loads the stored token pair.
func (s *Storage) LoadTokens(ctx context.Context) (*StoredTokens, error) {
	config, err := s.queries.GetAuthConfig(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("loading auth config: %w", err)
	}

	if !config.AccessToken.Valid {
		return nil, ErrNotAuthenticated
	}

	return &StoredTokens{
		AccessToken:  config.AccessToken.String,
		RefreshToken: config.RefreshToken.String,
		ExpiresAt:    config.ExpiresAt.Int64,
	}, nil
}

// LoadClientConfig loads the stored application credentials.
func (s *Storage) LoadClientConfig(ctx context.Context) (*ClientConfig, error) {
	config, err := s.queries.GetAuthConfig(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("loading auth config: %w", err)
	}

	return &ClientConfig{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
	}, nil
}

// DeleteTokens removes the stored config row.
func (s *Storage) DeleteTokens(ctx context.Context) error {
	return s.queries.DeleteAuthConfig(ctx)
}

// GetValidAccessToken returns a valid access token, performing exactly one
// refresh (and persisting the new pair) when the stored one is expired.
func (s *Storage) GetValidAccessToken(ctx context.Context) (string, error) {
	tokens, err := s.LoadTokens(ctx)
	if err != nil {
		return "", err
	}

	if !IsTokenExpired(tokens.ExpiresAt) {
		return tokens.AccessToken, nil
	}

	logging.Logger.Debug().Msg("access token expired, refreshing")
	return s.refresh(ctx, tokens.RefreshToken)
}

// ForceRefresh refreshes unconditionally. Used when the API rejects a token
// that still looked valid locally.
func (s *Storage) ForceRefresh(ctx context.Context) (string, error) {
	tokens, err := s.LoadTokens(ctx)
	if err != nil {
		return "", err
	}
	return s.refresh(ctx, tokens.RefreshToken)
}

func (s *Storage) refresh(ctx context.Context, refreshToken string) (string, error) {
	config, err := s.LoadClientConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("loading client config for refresh: %w", err)
	}

	newTokens, err := RefreshAccessToken(ctx, config.ClientID, config.ClientSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("refreshing token: %w", err)
	}

	if err := s.SaveTokens(ctx, newTokens); err != nil {
		return "", fmt.Errorf("saving refreshed tokens: %w", err)
	}

	return newTokens.AccessToken, nil
}
