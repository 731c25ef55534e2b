package couchbase

import (
	"context"
	"fmt"

	"github.com/couchbase/gocb/v2"
)

// sequenceDocID holds the patient id counter
const sequenceDocID = "patient::seq"

// Sequence hands out increasing record ids from an atomic counter document
type Sequence struct {
	collection *gocb.Collection
	key        string
}

// NewSequence creates a sequence on the given collection
func NewSequence(collection *gocb.Collection) *Sequence {
	return &Sequence{
		collection: collection,
		key:        sequenceDocID,
	}
}

// Next increments the counter, creating it at 1 on first use
func (s *Sequence) Next(ctx context.Context) (int64, error) {
	res, err := s.collection.Binary().Increment(s.key, &gocb.IncrementOptions{
		Initial: 1,
		Delta:   1,
		Context: ctx,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", s.key, err)
	}
	return int64(res.Content()), nil
}
