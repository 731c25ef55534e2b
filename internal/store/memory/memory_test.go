package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stealthcompany.com/nutrireg/internal/patient"
	"stealthcompany.com/nutrireg/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) patient.Store { return New() })
}

func TestConcurrentInsertsGetUniqueIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Insert(ctx, patient.Record{Name: "ANA", Identifier: "11111111111", Type: patient.TypeNew, Date: "2024-03-01"})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Query(ctx, patient.ByIdentifier("11111111111"))
	assert.ErrorIs(t, err, context.Canceled)
}
