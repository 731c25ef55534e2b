package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nutrireg.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsRequireOCRKey(t *testing.T) {
	t.Setenv("OCR_API_KEY", "")
	t.Setenv("OCR_BACKEND", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OCR_API_KEY")
}

func TestLoadOverridesRunBeforeValidation(t *testing.T) {
	t.Setenv("OCR_API_KEY", "")
	t.Setenv("OCR_BACKEND", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := Load("", func(c *Config) {
		c.OCR.Backend = OCRNone
		c.Storage.Backend = BackendMemory
	})
	require.NoError(t, err)
	assert.Equal(t, OCRNone, cfg.OCR.Backend)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
[server]
port = "9090"

[storage]
backend = "postgres"

[storage.postgres]
host = "db.internal"
database = "clinic"

[ocr]
backend = "tesseract"

[clinic]
timezone = "America/Mexico_City"
summary_days = 7
`)
	t.Setenv("DB_HOST", "db.override")
	t.Setenv("DB_PORT", "6543")
	for _, key := range []string{"DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "CLINIC_TIMEZONE"} {
		t.Setenv(key, "")
	}
	t.Setenv("SUMMARY_DAYS", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("OCR_BACKEND", "")
	t.Setenv("API_PORT", "")
	t.Setenv("ENABLE_BUSINESS_METRICS", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, "db.override", cfg.Storage.Postgres.Host)
	assert.Equal(t, 6543, cfg.Storage.Postgres.Port)
	assert.Equal(t, "clinic", cfg.Storage.Postgres.Database)
	assert.Equal(t, OCRTesseract, cfg.OCR.Backend)
	assert.Equal(t, 7, cfg.Clinic.SummaryDays)
	assert.True(t, cfg.Metrics.Business)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())

	assert.Equal(t,
		"postgres://postgres@db.override:6543/clinic?sslmode=disable",
		cfg.Storage.Postgres.DSN())
}

func TestPostgresDSN(t *testing.T) {
	base := Postgres{Host: "db", Port: 5432, User: "nutri", Database: "nutrireg", SSLMode: "disable"}

	tests := []struct {
		name     string
		password string
	}{
		{"Empty password", ""},
		{"Password with space", "my pass"},
		{"Password with quote and backslash", `o'k\x`},
		{"Password with URL delimiters", "p@ss:w/rd?#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			p.Password = tt.password
			dsn := p.DSN()

			_, err := pq.NewConnector(dsn)
			require.NoError(t, err)

			u, err := url.Parse(dsn)
			require.NoError(t, err)
			assert.Equal(t, "db:5432", u.Host)
			assert.Equal(t, "/nutrireg", u.Path)
			assert.Equal(t, "nutri", u.User.Username())
			pass, _ := u.User.Password()
			assert.Equal(t, tt.password, pass)
			assert.Equal(t, "disable", u.Query().Get("sslmode"))

			// lib/pq must see the database name as its own option
			kv, err := pq.ParseURL(dsn)
			require.NoError(t, err)
			assert.Regexp(t, `(^| )dbname='?nutrireg'?( |$)`, kv)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "Memory store without OCR",
			mutate: func(c *Config) { c.Storage.Backend = BackendMemory; c.OCR.Backend = OCRNone },
		},
		{
			name:    "Unknown storage backend",
			mutate:  func(c *Config) { c.Storage.Backend = "mysql"; c.OCR.Backend = OCRNone },
			wantErr: "storage.backend",
		},
		{
			name:    "Unknown OCR backend",
			mutate:  func(c *Config) { c.OCR.Backend = "cloud-vision" },
			wantErr: "ocr.backend",
		},
		{
			name:    "Bad timezone",
			mutate:  func(c *Config) { c.OCR.Backend = OCRNone; c.Clinic.Timezone = "Mars/Olympus" },
			wantErr: "clinic.timezone",
		},
		{
			name:    "Couchbase without bucket",
			mutate:  func(c *Config) { c.OCR.Backend = OCRNone; c.Storage.Backend = BackendCouchbase; c.Storage.Couchbase.Bucket = "" },
			wantErr: "storage.couchbase",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
