// Package storetest holds the behavior every patient.Store backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stealthcompany.com/nutrireg/internal/patient"
)

// Run exercises a fresh, empty store created by open.
func Run(t *testing.T, open func(t *testing.T) patient.Store) {
	t.Helper()
	ctx := context.Background()

	seed := []patient.Record{
		{Name: "ANA LOPEZ", Identifier: "11111111111", Type: patient.TypeNew, Date: "2024-03-01"},
		{Name: "LUIS DIAZ", Identifier: "22222222222", Type: patient.TypeNew, Note: "ayuno", Date: "2024-03-03"},
		{Name: "ANA LOPEZ", Identifier: "11111111111", Type: patient.TypeFollowUp, Date: "2024-03-03"},
		{Name: "JOSÉ ÑÚÑEZ", Identifier: "33333333333", Type: patient.TypeNew, Date: "2024-03-04"},
		{Name: "ANA LOPEZ", Identifier: "11111111111", Type: patient.TypeFollowUp, Date: "2024-03-04"},
	}

	populate := func(t *testing.T) (patient.Store, []int64) {
		s := open(t)
		t.Cleanup(func() { _ = s.Close() })

		ids := make([]int64, 0, len(seed))
		for _, rec := range seed {
			id, err := s.Insert(ctx, rec)
			require.NoError(t, err)
			ids = append(ids, id)
		}
		return s, ids
	}

	t.Run("Insert assigns increasing ids", func(t *testing.T) {
		_, ids := populate(t)
		for i := 1; i < len(ids); i++ {
			assert.Greater(t, ids[i], ids[i-1])
		}
	})

	t.Run("Insert rejects invalid records", func(t *testing.T) {
		s := open(t)
		t.Cleanup(func() { _ = s.Close() })

		_, err := s.Insert(ctx, patient.Record{Name: "  ", Identifier: "11111111111", Type: patient.TypeNew, Date: "2024-03-01"})
		assert.ErrorIs(t, err, patient.ErrMissingName)

		_, err = s.Insert(ctx, patient.Record{Name: "ANA", Type: patient.TypeNew, Date: "2024-03-01"})
		assert.ErrorIs(t, err, patient.ErrMissingIdentifier)

		got, err := s.Query(ctx, patient.Filter{Kind: patient.FilterDateRange, From: "2000-01-01"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	tests := []struct {
		name    string
		filter  patient.Filter
		indexes []int
	}{
		{
			name:    "Open date range newest first",
			filter:  patient.Filter{Kind: patient.FilterDateRange, From: "2024-03-03"},
			indexes: []int{4, 3, 2, 1},
		},
		{
			name:    "Closed date range",
			filter:  patient.Filter{Kind: patient.FilterDateRange, From: "2024-03-01", To: "2024-03-03"},
			indexes: []int{2, 1, 0},
		},
		{
			name:    "Exact date in registration order",
			filter:  patient.Filter{Kind: patient.FilterExactDate, Date: "2024-03-03"},
			indexes: []int{1, 2},
		},
		{
			name:    "Identifier history newest first",
			filter:  patient.Filter{Kind: patient.FilterIdentifier, Identifier: "11111111111"},
			indexes: []int{4, 2, 0},
		},
		{
			name:    "No matches",
			filter:  patient.Filter{Kind: patient.FilterExactDate, Date: "2023-12-31"},
			indexes: []int{},
		},
	}

	s, ids := populate(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(ctx, tt.filter)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Len(t, got, len(tt.indexes))

			for i, idx := range tt.indexes {
				want := seed[idx]
				want.ID = ids[idx]
				assert.Equal(t, want, got[i])
			}
		})
	}

	t.Run("Invalid filter", func(t *testing.T) {
		_, err := s.Query(ctx, patient.Filter{Kind: patient.FilterIdentifier})
		assert.ErrorIs(t, err, patient.ErrInvalidFilter)
	})
}
