package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stealthcompany.com/nutrireg/internal/config"
	"stealthcompany.com/nutrireg/internal/store/memory"
	"stealthcompany.com/nutrireg/internal/store/sqlstore"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		s, err := Open(ctx, config.Storage{Backend: config.BackendMemory})
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, s)
	})

	t.Run("SQLite", func(t *testing.T) {
		s, err := Open(ctx, config.Storage{
			Backend: config.BackendSQLite,
			SQLite:  config.SQLite{Path: filepath.Join(t.TempDir(), "p.db")},
		})
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &sqlstore.Store{}, s)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := Open(ctx, config.Storage{Backend: "mongo"})
		assert.Error(t, err)
	})
}
