// Package couchbase stores patient records as JSON documents in a Couchbase
// collection and queries them with N1QL.
package couchbase

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/nutrireg/internal/config"
	"stealthcompany.com/nutrireg/internal/patient"
)

// Store orchestrates the connection, id sequence and document writes
type Store struct {
	connManager *ConnectionManager
	docManager  *DocumentManager
	sequence    *Sequence
}

// Open connects to the cluster and ensures the query indexes exist
func Open(ctx context.Context, cfg config.Couchbase) (*Store, error) {
	connManager, err := NewConnectionManager(cfg)
	if err != nil {
		return nil, err
	}

	s := &Store{
		connManager: connManager,
		docManager:  NewDocumentManager(connManager.GetCollection()),
		sequence:    NewSequence(connManager.GetCollection()),
	}
	s.ensureIndexes(ctx)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) {
	for _, stmt := range indexStatements(s.connManager.Keyspace()) {
		if _, err := s.connManager.GetCluster().Query(stmt, &gocb.QueryOptions{Context: ctx}); err != nil {
			log.Warn().Err(err).Str("statement", stmt).Msg("Failed to create Couchbase index")
		}
	}
}

func (s *Store) Insert(ctx context.Context, rec patient.Record) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	id, err := s.sequence.Next(ctx)
	if err != nil {
		return 0, classify(err)
	}
	rec.ID = id

	if err := s.docManager.InsertRecord(ctx, rec); err != nil {
		return 0, classify(err)
	}
	return id, nil
}

func (s *Store) Query(ctx context.Context, f patient.Filter) ([]patient.Record, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	stmt, params := buildQuery(s.connManager.Keyspace(), f)
	rows, err := s.connManager.GetCluster().Query(stmt, &gocb.QueryOptions{
		NamedParameters: params,
		ScanConsistency: gocb.QueryScanConsistencyRequestPlus,
		Context:         ctx,
	})
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", classify(err))
	}
	defer rows.Close()

	records := make([]patient.Record, 0)
	for rows.Next() {
		var rec patient.Record
		if err := rows.Row(&rec); err != nil {
			return nil, fmt.Errorf("decode patient row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", classify(err))
	}
	return records, nil
}

// Close closes the Couchbase connection
func (s *Store) Close() error {
	return s.connManager.Close()
}

func classify(err error) error {
	switch {
	case errors.Is(err, gocb.ErrTimeout),
		errors.Is(err, gocb.ErrServiceNotAvailable),
		errors.Is(err, gocb.ErrRequestCanceled):
		return fmt.Errorf("%w: %w", patient.ErrStoreUnavailable, err)
	default:
		return err
	}
}
