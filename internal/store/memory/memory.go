// Package memory keeps patient records in process memory. Records are lost
// on exit; use it for demos and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"stealthcompany.com/nutrireg/internal/patient"
)

type Store struct {
	mu      sync.RWMutex
	records []patient.Record
	nextID  int64
}

func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) Insert(ctx context.Context, rec patient.Record) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++
	s.records = append(s.records, rec)
	return rec.ID, nil
}

func (s *Store) Query(ctx context.Context, f patient.Filter) ([]patient.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]patient.Record, 0)
	for _, rec := range s.records {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return f.Less(out[i], out[j]) })
	return out, nil
}

func (s *Store) Close() error { return nil }
