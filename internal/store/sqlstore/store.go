// Package sqlstore implements patient.Store on database/sql. The postgres
// and sqlite packages open the connection and pick the Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"stealthcompany.com/nutrireg/internal/patient"
)

// Store is a patient.Store backed by a *sql.DB pool.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open pool. The Store owns db and closes it on Close.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the pool for backend-specific setup.
func (s *Store) DB() *sql.DB { return s.db }

// Insert validates rec and stores it, returning the generated id.
func (s *Store) Insert(ctx context.Context, rec patient.Record) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	args := []any{rec.Name, rec.Identifier, string(rec.Type), rec.Note, rec.Date}

	if s.dialect.Returning {
		var id int64
		if err := s.db.QueryRowContext(ctx, s.dialect.InsertSQL(), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert patient: %w", classify(err))
		}
		return id, nil
	}

	res, err := s.db.ExecContext(ctx, s.dialect.InsertSQL(), args...)
	if err != nil {
		return 0, fmt.Errorf("insert patient: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Query runs f and returns the matching records. An empty result is a
// non-nil empty slice.
func (s *Store) Query(ctx context.Context, f patient.Filter) ([]patient.Record, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	query, args := s.dialect.SelectSQL(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", classify(err))
	}
	defer rows.Close()

	records := make([]patient.Record, 0)
	for rows.Next() {
		var (
			rec patient.Record
			typ string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Identifier, &typ, &rec.Note, &rec.Date); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		rec.Type = patient.Type(typ)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", classify(err))
	}
	return records, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// classify marks connectivity failures with patient.ErrStoreUnavailable.
func classify(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", patient.ErrStoreUnavailable, err)
	default:
		return err
	}
}
