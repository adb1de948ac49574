// Package db provides SQLite persistence for auth credentials and the
// single-slot recommendation cache.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/joshdurbin/runcoach/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open opens (creating if needed) the SQLite database at path, applies
// pragmas suitable for a single sequential process, and runs migrations.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	log := logging.Logger

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := configure(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("configuring SQLite: %w", err)
	}

	if err := Migrate(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.Debug().Str("path", path).Msg("database opened")
	return sqlDB, nil
}

// Migrate brings the schema up to date using the embedded goose migrations.
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	log := logging.Logger

	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for _, r := range results {
		log.Debug().Int64("version", r.Source.Version).Str("path", r.Source.Path).Msg("migration applied")
	}

	return nil
}

func configure(sqlDB *sql.DB) error {
	// WAL keeps writes cheap; the CLI is a single sequential process so one
	// connection is enough.
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("setting synchronous mode: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return nil
}
