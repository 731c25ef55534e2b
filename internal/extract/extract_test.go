package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "Label and next line",
			text:     "NOMBRE: Juan\nPerez Gomez\n",
			expected: "Juan Perez Gomez",
		},
		{
			name:     "Surrounding card text and padding",
			text:     "INSTITUTO MEXICANO\nNOMBRE:   MARIA  \n  LOPEZ RUIZ \nNSS 1234\n",
			expected: "MARIA LOPEZ RUIZ",
		},
		{
			name:     "Label alone on its line",
			text:     "NOMBRE:\nJuan\nPerez\n",
			expected: "Juan Perez",
		},
		{
			name:     "Carriage returns are trimmed",
			text:     "NOMBRE: Ana\r\nTorres\r\n",
			expected: "Ana Torres",
		},
		{
			name:     "Second line must be newline terminated",
			text:     "NOMBRE: Juan\nPerez Gomez",
			expected: "",
		},
		{
			name:     "No label",
			text:     "Juan Perez Gomez\nNSS 12345678901\n",
			expected: "",
		},
		{
			name:     "Label is case sensitive",
			text:     "nombre: Juan\nPerez\n",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Name(tt.text))
		})
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		expected       string
		expectedSource Source
	}{
		{
			name:           "Spaces and hyphens inside the number",
			text:           "NSS 123-456 789-01 X",
			expected:       "12345678901",
			expectedSource: SourceNormalized,
		},
		{
			name:           "Number split across lines",
			text:           "NSS 12345\n678901\n",
			expected:       "12345678901",
			expectedSource: SourceNormalized,
		},
		{
			name:           "CRLF line breaks are removed too",
			text:           "NSS 1234567\r\n8901\r\n",
			expected:       "12345678901",
			expectedSource: SourceNormalized,
		},
		{
			name:           "Spaced digits on a seguro social line normalize to a run",
			text:           "Numero de Seguro Social: 1 2 3 4 5 6 7 8 9 0 1",
			expected:       "12345678901",
			expectedSource: SourceNormalized,
		},
		{
			name:           "Longer run is skipped for a later exact run",
			text:           "Folio 123456789012 NSS 98765432101",
			expected:       "98765432101",
			expectedSource: SourceNormalized,
		},
		{
			name:           "Leftmost exact run wins",
			text:           "11111111111 / 22222222222",
			expected:       "11111111111",
			expectedSource: SourceNormalized,
		},
		{
			name:           "Fifteen digit run falls back to the line rule",
			text:           "Seg. Social 123456789012345",
			expected:       "12345678901",
			expectedSource: SourceSocialSecurityLine,
		},
		{
			name:           "Dotted digits on a seguridad social line",
			text:           "No. Seguridad Social: 1234.5678.901",
			expected:       "12345678901",
			expectedSource: SourceSocialSecurityLine,
		},
		{
			name:           "Lines with too few digits are skipped",
			text:           "SEG SOCIAL 12.34\nseguro social 11.22.33.44.55.66.7\nseguro social 99.88.77.66.55.44",
			expected:       "11223344556",
			expectedSource: SourceSocialSecurityLine,
		},
		{
			name:           "Fifteen digit run without a seguro social line",
			text:           "Afiliacion 123456789012345",
			expected:       "",
			expectedSource: SourceNone,
		},
		{
			name:           "Social before seg does not match",
			text:           "Social seg 1.2.3.4.5.6.7.8.9.0.1",
			expected:       "",
			expectedSource: SourceNone,
		},
		{
			name:           "Arabic-Indic digits",
			text:           "seg social ١٢٣٤٥٦٧٨٩٠١",
			expected:       "12345678901",
			expectedSource: SourceNormalized,
		},
		{
			name:           "Devanagari digits on a seguro social line",
			text:           "Seguro Social: १२३.४५६.७८९.०१",
			expected:       "12345678901",
			expectedSource: SourceSocialSecurityLine,
		},
		{
			name:           "Fullwidth digits",
			text:           "NSS ０１２３４５６７８９０",
			expected:       "01234567890",
			expectedSource: SourceNormalized,
		},
		{
			name:           "Nothing to find",
			text:           "NOMBRE: Juan\nPerez\n",
			expected:       "",
			expectedSource: SourceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nss, source := Identifier(tt.text)
			assert.Equal(t, tt.expected, nss)
			assert.Equal(t, tt.expectedSource, source)
		})
	}
}

func TestASCIIDigit(t *testing.T) {
	tests := []struct {
		in       rune
		expected byte
	}{
		{'7', '7'},
		{'٠', '0'},
		{'٩', '9'},
		{'۵', '5'},
		{'８', '8'},
		{'𝟘', '0'},
		{'𝟡', '9'},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.expected, asciiDigit(tt.in))
		})
	}
}

func TestFromText(t *testing.T) {
	card := "INSTITUTO MEXICANO DEL SEGURO SOCIAL\n" +
		"NOMBRE: JUAN\n" +
		"PEREZ GOMEZ\n" +
		"NSS: 1234-56-7890-1\n"

	res := FromText(card)
	assert.Equal(t, "JUAN PEREZ GOMEZ", res.Name)
	assert.Equal(t, "12345678901", res.Identifier)
	assert.Equal(t, SourceNormalized, res.IdentifierSource)
	assert.True(t, res.HasName())
	assert.True(t, res.HasIdentifier())

	t.Run("Empty input is fully absent", func(t *testing.T) {
		res := FromText("")
		assert.Equal(t, Result{}, res)
		assert.False(t, res.HasName())
		assert.False(t, res.HasIdentifier())
	})

	t.Run("Repeated runs agree", func(t *testing.T) {
		assert.Equal(t, FromText(card), FromText(card))
	})
}
