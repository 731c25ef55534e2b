package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stealthcompany.com/nutrireg/internal/patient"
)

func TestReadTableFromExport(t *testing.T) {
	records := []patient.Record{
		{ID: 9, Name: "JOSÉ ÑÚÑEZ", Identifier: "01234567890", Type: patient.TypeFollowUp, Note: "control", Date: "2024-03-04"},
		{ID: 4, Name: "ANA LOPEZ", Identifier: "11111111111", Type: patient.TypeNew, Date: "2024-03-01"},
	}
	data, err := RenderTable(records)
	require.NoError(t, err)

	got, rowErrs, err := ReadTable(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)

	// Ids are assigned by the store on import
	for i := range records {
		records[i].ID = 0
	}
	assert.Equal(t, records, got)
}

// legacyWorkbook builds a hand-kept register: default sheet name, shuffled
// columns, numeric NSS cells and mixed date formats.
func legacyWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadTableLegacy(t *testing.T) {
	data := legacyWorkbook(t, [][]interface{}{
		{"Fecha", " nss ", "NOMBRE", "Tipo"},
		{"01/05/2024", 1234567890, "Juan Perez", "Nuevo"},
		{45413, "98765432109", "Ana Lopez", "subsecuente"},
		{" ", ""},
		{"2024-05-02", "", "Sin NSS", ""},
		{"mañana", "11111111111", "Fecha rota", ""},
		{"2024-05-02", "22222222222", "Tipo raro", "urgencia"},
	})

	got, rowErrs, err := ReadTable(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []patient.Record{
		{Name: "Juan Perez", Identifier: "01234567890", Type: patient.TypeNew, Date: "2024-05-01"},
		{Name: "Ana Lopez", Identifier: "98765432109", Type: patient.TypeFollowUp, Date: "2024-05-01"},
	}, got)

	require.Len(t, rowErrs, 3)
	rows := make([]int, 0, len(rowErrs))
	for _, err := range rowErrs {
		var re *RowError
		require.ErrorAs(t, err, &re)
		rows = append(rows, re.Row)
	}
	assert.Equal(t, []int{5, 6, 7}, rows)
	assert.ErrorIs(t, rowErrs[0], patient.ErrMissingIdentifier)
	assert.ErrorIs(t, rowErrs[2], patient.ErrUnknownType)
}

func TestReadTableErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "Missing required columns",
			data: legacyWorkbook(t, [][]interface{}{{"Nombre", "Nota"}, {"Juan", ""}}),
		},
		{
			name: "Empty sheet",
			data: legacyWorkbook(t, nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadTable(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrMissingColumn)
		})
	}

	t.Run("Not a workbook", func(t *testing.T) {
		_, _, err := ReadTable(bytes.NewReader([]byte("Nombre,NSS\n")))
		assert.Error(t, err)
	})
}

func TestPadIdentifier(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1234567890", "01234567890"},
		{"12345678901", "12345678901"},
		{"12-34", "12-34"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, padIdentifier(tt.in))
		})
	}
}
