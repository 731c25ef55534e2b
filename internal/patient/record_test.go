package patient

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func TestParseType(t *testing.T) {
	tests := []struct {
		in          string
		expected    Type
		expectError bool
	}{
		{in: "", expected: TypeNew},
		{in: "new", expected: TypeNew},
		{in: " Nuevo ", expected: TypeNew},
		{in: "follow_up", expected: TypeFollowUp},
		{in: "Follow-Up", expected: TypeFollowUp},
		{in: "SUBSECUENTE", expected: TypeFollowUp},
		{in: "returning", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.expectError {
				require.ErrorIs(t, err, ErrUnknownType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Nuevo", TypeNew.Label())
	assert.Equal(t, "Subsecuente", TypeFollowUp.Label())
}

func TestSubmissionRecord(t *testing.T) {
	t.Run("Normalizes and dates the record", func(t *testing.T) {
		rec, err := Submission{
			Name:       "  José Perez ",
			Identifier: " 12345678901 ",
			Type:       "subsecuente",
			Note:       " control de peso ",
		}.Record(day)
		require.NoError(t, err)

		assert.Equal(t, "José Perez", rec.Name)
		assert.Equal(t, "12345678901", rec.Identifier)
		assert.Equal(t, TypeFollowUp, rec.Type)
		assert.Equal(t, "control de peso", rec.Note)
		assert.Equal(t, "2026-03-14", rec.Date)
		assert.Zero(t, rec.ID)
	})

	tests := []struct {
		name     string
		sub      Submission
		expected []error
	}{
		{
			name:     "Blank name",
			sub:      Submission{Name: "   ", Identifier: "12345678901"},
			expected: []error{ErrMissingName},
		},
		{
			name:     "Blank NSS",
			sub:      Submission{Name: "Juan", Identifier: ""},
			expected: []error{ErrMissingIdentifier},
		},
		{
			name:     "Both blank",
			sub:      Submission{},
			expected: []error{ErrMissingName, ErrMissingIdentifier},
		},
		{
			name:     "Unknown type",
			sub:      Submission{Name: "Juan", Identifier: "1", Type: "vip"},
			expected: []error{ErrUnknownType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sub.Record(day)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			for _, want := range tt.expected {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestRecordValidate(t *testing.T) {
	rec := Record{Name: "Juan", Identifier: "12345678901", Type: TypeNew, Date: "2026-03-14"}
	require.NoError(t, rec.Validate())

	rec.Date = "14/03/2026"
	assert.Error(t, rec.Validate())
}
