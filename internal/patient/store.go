// Package patient holds the consultation record model, its validation rules,
// and the storage contract every backend implements.
package patient

import (
	"context"
	"errors"
)

// ErrStoreUnavailable wraps connectivity failures of a storage backend.
var ErrStoreUnavailable = errors.New("patient store unavailable")

// Store persists consultation records. Implementations must reject records
// that fail Validate and must release any connection they acquire before
// returning.
type Store interface {
	// Insert stores rec and returns the sequential ID assigned to it.
	Insert(ctx context.Context, rec Record) (int64, error)
	// Query returns the records selected by f in the order documented on
	// FilterKind.
	Query(ctx context.Context, f Filter) ([]Record, error)
	Close() error
}
