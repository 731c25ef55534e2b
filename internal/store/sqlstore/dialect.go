package sqlstore

import (
	"strconv"
	"strings"

	"stealthcompany.com/nutrireg/internal/patient"
)

// Dialect captures the differences between the SQL backends.
type Dialect struct {
	Name string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// DateColumn selects visit_date as YYYY-MM-DD text.
	DateColumn string
	// Returning makes Insert read the new id from INSERT ... RETURNING.
	Returning bool
}

var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	DateColumn:  "to_char(visit_date, 'YYYY-MM-DD')",
	Returning:   true,
}

var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	DateColumn:  "visit_date",
}

// InsertSQL returns the statement that stores one record.
func (d Dialect) InsertSQL() string {
	q := "INSERT INTO patients (name, nss, patient_type, note, visit_date) VALUES (" +
		d.placeholders(5) + ")"
	if d.Returning {
		q += " RETURNING id"
	}
	return q
}

// SelectSQL renders the query and bind arguments for f. f must be valid.
func (d Dialect) SelectSQL(f patient.Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT id, name, nss, patient_type, note, ")
	b.WriteString(d.DateColumn)
	b.WriteString(" FROM patients WHERE ")

	var args []any
	switch f.Kind {
	case patient.FilterDateRange:
		args = append(args, f.From)
		b.WriteString("visit_date >= " + d.Placeholder(len(args)))
		if f.To != "" {
			args = append(args, f.To)
			b.WriteString(" AND visit_date <= " + d.Placeholder(len(args)))
		}
		b.WriteString(" ORDER BY visit_date DESC, id DESC")
	case patient.FilterExactDate:
		args = append(args, f.Date)
		b.WriteString("visit_date = " + d.Placeholder(len(args)))
		b.WriteString(" ORDER BY id ASC")
	case patient.FilterIdentifier:
		args = append(args, f.Identifier)
		b.WriteString("nss = " + d.Placeholder(len(args)))
		b.WriteString(" ORDER BY visit_date DESC, id DESC")
	}
	return b.String(), args
}

func (d Dialect) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.Placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}
