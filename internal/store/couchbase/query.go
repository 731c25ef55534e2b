package couchbase

import (
	"strings"

	"stealthcompany.com/nutrireg/internal/patient"
)

// buildQuery renders a N1QL statement with named parameters for f.
// f must be valid.
func buildQuery(keyspace string, f patient.Filter) (string, map[string]interface{}) {
	var b strings.Builder
	b.WriteString("SELECT p.id, p.name, p.nss, p.type, p.note, p.date FROM ")
	b.WriteString(keyspace)
	b.WriteString(" AS p WHERE p.kind = $kind")

	params := map[string]interface{}{"kind": docKind}
	switch f.Kind {
	case patient.FilterDateRange:
		b.WriteString(" AND p.date >= $from")
		params["from"] = f.From
		if f.To != "" {
			b.WriteString(" AND p.date <= $to")
			params["to"] = f.To
		}
		b.WriteString(" ORDER BY p.date DESC, p.id DESC")
	case patient.FilterExactDate:
		b.WriteString(" AND p.date = $date ORDER BY p.id ASC")
		params["date"] = f.Date
	case patient.FilterIdentifier:
		b.WriteString(" AND p.nss = $nss ORDER BY p.date DESC, p.id DESC")
		params["nss"] = f.Identifier
	}
	return b.String(), params
}

// indexStatements are created on open; date and nss cover every filter
func indexStatements(keyspace string) []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_patient_date ON " + keyspace + "(date, id) WHERE kind = \"patient\"",
		"CREATE INDEX IF NOT EXISTS idx_patient_nss ON " + keyspace + "(nss, date) WHERE kind = \"patient\"",
	}
}
