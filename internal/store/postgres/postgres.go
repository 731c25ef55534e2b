// Package postgres stores patient records in a PostgreSQL database.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/nutrireg/internal/config"
	"stealthcompany.com/nutrireg/internal/patient"
	"stealthcompany.com/nutrireg/internal/store/sqlstore"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Open connects, verifies the connection and applies migrations.
func Open(ctx context.Context, cfg config.Postgres) (*sqlstore.Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %w", patient.ErrStoreUnavailable, err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connected to PostgreSQL")

	store := sqlstore.New(db, sqlstore.Postgres)
	if err := store.Migrate(ctx, migrationFS, "migrations"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}
