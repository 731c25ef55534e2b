package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"stealthcompany.com/nutrireg/internal/patient"
)

// ErrMissingColumn is returned when a required header cell is absent.
var ErrMissingColumn = errors.New("missing column")

// RowError reports a data row that could not become a record. Row is the
// 1-based sheet row, as staff see it in a spreadsheet program.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// Paper registers transcribed by hand use day-first dates
var dateLayouts = []string{
	patient.DateLayout,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
}

type columns struct {
	name, nss, typ, note, date int
}

// ReadTable parses a workbook with the RenderTable layout: a header row
// naming the columns, then one consultation per row. Columns are matched by
// header text, so reordered legacy sheets import too; Tipo and Nota are
// optional. The Pacientes sheet is read when present, the first sheet
// otherwise.
//
// Rows that fail validation are returned as *RowError values and skipped;
// a structural problem with the workbook is returned as err.
func ReadTable(r io.Reader) (records []patient.Record, rowErrs []error, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q is empty", ErrMissingColumn, sheet)
	}

	cols, err := headerColumns(rows[0])
	if err != nil {
		return nil, nil, err
	}

	records = []patient.Record{}
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec, err := parseRow(row, cols)
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Row: i + 2, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, rowErrs, nil
}

func headerColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	lookup := func(name string) int {
		if i, ok := index[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}

	cols := columns{
		name: lookup(Header[0]),
		nss:  lookup(Header[1]),
		typ:  lookup(Header[2]),
		note: lookup(Header[3]),
		date: lookup(Header[4]),
	}

	var missing []string
	for _, c := range []struct {
		name string
		idx  int
	}{{Header[0], cols.name}, {Header[1], cols.nss}, {Header[4], cols.date}} {
		if c.idx < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (patient.Record, error) {
	day, err := parseDate(cell(row, cols.date))
	if err != nil {
		return patient.Record{}, err
	}
	sub := patient.Submission{
		Name:       cell(row, cols.name),
		Identifier: padIdentifier(cell(row, cols.nss)),
		Type:       cell(row, cols.typ),
		Note:       cell(row, cols.note),
	}
	return sub.Record(day)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseDate accepts text dates and Excel serial numbers.
func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", v)
}

// padIdentifier restores leading zeros dropped when the NSS column was
// stored as a number.
func padIdentifier(v string) string {
	if v == "" || len(v) >= 11 {
		return v
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return v
		}
	}
	return strings.Repeat("0", 11-len(v)) + v
}
