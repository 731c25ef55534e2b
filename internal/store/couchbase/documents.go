package couchbase

import (
	"context"
	"fmt"

	"github.com/couchbase/gocb/v2"

	"stealthcompany.com/nutrireg/internal/patient"
)

// docKind tags patient documents so queries skip the counter document
const docKind = "patient"

type patientDocument struct {
	Kind string `json:"kind"`
	patient.Record
}

func documentID(id int64) string {
	return fmt.Sprintf("patient::%d", id)
}

// DocumentManager writes patient documents
type DocumentManager struct {
	collection *gocb.Collection
}

// NewDocumentManager creates a new document manager
func NewDocumentManager(collection *gocb.Collection) *DocumentManager {
	return &DocumentManager{collection: collection}
}

// InsertRecord stores rec under its id. Records are immutable, so an existing
// document is an error rather than an overwrite.
func (dm *DocumentManager) InsertRecord(ctx context.Context, rec patient.Record) error {
	docID := documentID(rec.ID)
	_, err := dm.collection.Insert(docID, patientDocument{Kind: docKind, Record: rec}, &gocb.InsertOptions{
		Context: ctx,
	})
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", docID, err)
	}
	return nil
}
