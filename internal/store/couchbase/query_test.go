package couchbase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stealthcompany.com/nutrireg/internal/config"
	"stealthcompany.com/nutrireg/internal/patient"
)

func TestBuildQuery(t *testing.T) {
	ks := keyspace("clinic", "_default", "patients")

	tests := []struct {
		name     string
		filter   patient.Filter
		expected string
		params   map[string]interface{}
	}{
		{
			name:     "Open range",
			filter:   patient.Filter{Kind: patient.FilterDateRange, From: "2024-03-01"},
			expected: "SELECT p.id, p.name, p.nss, p.type, p.note, p.date FROM `clinic`.`_default`.`patients` AS p WHERE p.kind = $kind AND p.date >= $from ORDER BY p.date DESC, p.id DESC",
			params:   map[string]interface{}{"kind": "patient", "from": "2024-03-01"},
		},
		{
			name:     "Closed range",
			filter:   patient.Filter{Kind: patient.FilterDateRange, From: "2024-03-01", To: "2024-03-02"},
			expected: "SELECT p.id, p.name, p.nss, p.type, p.note, p.date FROM `clinic`.`_default`.`patients` AS p WHERE p.kind = $kind AND p.date >= $from AND p.date <= $to ORDER BY p.date DESC, p.id DESC",
			params:   map[string]interface{}{"kind": "patient", "from": "2024-03-01", "to": "2024-03-02"},
		},
		{
			name:     "Exact date",
			filter:   patient.Filter{Kind: patient.FilterExactDate, Date: "2024-03-02"},
			expected: "SELECT p.id, p.name, p.nss, p.type, p.note, p.date FROM `clinic`.`_default`.`patients` AS p WHERE p.kind = $kind AND p.date = $date ORDER BY p.id ASC",
			params:   map[string]interface{}{"kind": "patient", "date": "2024-03-02"},
		},
		{
			name:     "Identifier",
			filter:   patient.Filter{Kind: patient.FilterIdentifier, Identifier: "12345678901"},
			expected: "SELECT p.id, p.name, p.nss, p.type, p.note, p.date FROM `clinic`.`_default`.`patients` AS p WHERE p.kind = $kind AND p.nss = $nss ORDER BY p.date DESC, p.id DESC",
			params:   map[string]interface{}{"kind": "patient", "nss": "12345678901"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, params := buildQuery(ks, tt.filter)
			assert.Equal(t, tt.expected, stmt)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestConnectionString(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"couchbase://db", "couchbase://db"},
		{"couchbases://cloud.example.com", "couchbases://cloud.example.com"},
		{"http://localhost", "couchbase://localhost"},
		{"https://cloud.example.com", "couchbases://cloud.example.com"},
		{"localhost", "couchbase://localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, connectionString(tt.in))
		})
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := withDefaults(config.Couchbase{Bucket: "clinic"})
	assert.Equal(t, "_default", cfg.Scope)
	assert.Equal(t, "_default", cfg.Collection)
	assert.Equal(t, "patient::42", documentID(42))
}
