// Package store opens the patient.Store selected in configuration.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/nutrireg/internal/config"
	"stealthcompany.com/nutrireg/internal/patient"
	"stealthcompany.com/nutrireg/internal/store/couchbase"
	"stealthcompany.com/nutrireg/internal/store/memory"
	"stealthcompany.com/nutrireg/internal/store/postgres"
	"stealthcompany.com/nutrireg/internal/store/sqlite"
)

// Open connects the configured backend. The caller owns the returned store
// and must Close it.
func Open(ctx context.Context, cfg config.Storage) (patient.Store, error) {
	log.Info().Str("backend", cfg.Backend).Msg("Opening patient store")

	var (
		s   patient.Store
		err error
	)
	switch cfg.Backend {
	case config.BackendPostgres:
		s, err = unwrap(postgres.Open(ctx, cfg.Postgres))
	case config.BackendSQLite:
		s, err = unwrap(sqlite.Open(ctx, cfg.SQLite))
	case config.BackendCouchbase:
		s, err = unwrap(couchbase.Open(ctx, cfg.Couchbase))
	case config.BackendMemory:
		s = memory.New()
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// unwrap keeps a failed open from leaking a typed nil into the interface.
func unwrap[S patient.Store](s S, err error) (patient.Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
