package cmd

import (
	"context"
	"database/sql"

	"github.com/joshdurbin/runcoach/internal/ai"
	"github.com/joshdurbin/runcoach/internal/auth"
	"github.com/joshdurbin/runcoach/internal/cache"
	"github.com/joshdurbin/runcoach/internal/coach"
	"github.com/joshdurbin/runcoach/internal/config"
	"github.com/joshdurbin/runcoach/internal/db"
	"github.com/joshdurbin/runcoach/internal/strava"
)

// app bundles the shared dependencies each command wires up.
type app struct {
	cfg     *config.Config
	sqlDB   *sql.DB
	queries *db.Queries
	storage *auth.Storage
	store   *cache.Store
}

// openApp loads config, opens the database, and builds the persistence
// layers. Callers own Close.
func openApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	path := dbPath
	if path == "" {
		path = cfg.DBPath
	}

	sqlDB, err := db.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	queries := db.New(sqlDB)
	return &app{
		cfg:     cfg,
		sqlDB:   sqlDB,
		queries: queries,
		storage: auth.NewStorage(queries),
		store:   cache.NewStore(queries),
	}, nil
}

func (a *app) Close() {
	a.sqlDB.Close()
}

// newCoach builds the orchestrator. The AI recommender is only wired when
// an API key is configured.
func (a *app) newCoach(stalePolicy coach.StalePolicy) *coach.Service {
	var recommender coach.Recommender
	if a.cfg.AIConfigured() {
		recommender = ai.New(a.cfg.OpenRouterAPIKey, a.cfg.AIModel, a.cfg.AIBaseURL)
	}
	return coach.New(a.store, a.storage, strava.NewClient(), recommender, stalePolicy)
}
