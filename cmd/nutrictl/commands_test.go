package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stealthcompany.com/nutrireg/internal/api"
	"stealthcompany.com/nutrireg/internal/export"
	"stealthcompany.com/nutrireg/internal/intake"
	"stealthcompany.com/nutrireg/internal/patient"
)

type cli struct {
	t      *testing.T
	dbPath string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{t: t, dbPath: filepath.Join(t.TempDir(), "registry.db")}
}

// exec runs one command line against a fresh SQLite file shared across calls
func (c *cli) exec(stdin string, args ...string) (string, error) {
	c.t.Helper()
	cc := &commandContext{}
	cmd := newRootCommand(cc)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--storage", "sqlite", "--sqlite", c.dbPath, "--ocr", "none"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), errors.Join(err, cc.close())
}

func TestRegisterAndList(t *testing.T) {
	c := newCLI(t)

	_, err := c.exec("", "register", "--name", "Juan Perez", "--nss", "12345678901")
	require.NoError(t, err)
	_, err = c.exec("", "register", "--name", "Ana Lopez", "--nss", "10987654321", "--type", "subsecuente", "--note", "control")
	require.NoError(t, err)
	_, err = c.exec("", "register", "--name", "Juan Perez", "--nss", "12345678901", "--type", "subsecuente")
	require.NoError(t, err)

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "Summary window",
			args:     []string{"list", "--json"},
			expected: []string{"Juan Perez", "Ana Lopez", "Juan Perez"},
		},
		{
			name:     "By NSS",
			args:     []string{"list", "--json", "--nss", "12345678901"},
			expected: []string{"Juan Perez", "Juan Perez"},
		},
		{
			name:     "Unknown NSS",
			args:     []string{"list", "--json", "--nss", "00000000000"},
			expected: []string{},
		},
		{
			name:     "Old range",
			args:     []string{"list", "--json", "--from", "2001-01-01", "--to", "2001-12-31"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.exec("", tt.args...)
			require.NoError(t, err)

			var records []patient.Record
			require.NoError(t, json.Unmarshal([]byte(out), &records))

			names := make([]string, 0, len(records))
			for _, r := range records {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}

	t.Run("Table output", func(t *testing.T) {
		out, err := c.exec("", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "Subsecuente")
		assert.Contains(t, out, "10987654321")
		assert.Contains(t, out, "3 record(s)")
	})

	t.Run("Empty table", func(t *testing.T) {
		out, err := c.exec("", "list", "--date", "2001-02-03")
		require.NoError(t, err)
		assert.Equal(t, "No records (date 2001-02-03)\n", out)
	})
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected error
	}{
		{"Missing name", []string{"register", "--nss", "12345678901"}, patient.ErrMissingName},
		{"Missing NSS", []string{"register", "--name", "Juan"}, patient.ErrMissingIdentifier},
		{"Unknown type", []string{"register", "--name", "Juan", "--nss", "1", "--type", "otro"}, patient.ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCLI(t).exec("", tt.args...)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestListInvalidFilter(t *testing.T) {
	c := newCLI(t)

	_, err := c.exec("", "list", "--date", "03/02/2001")
	assert.ErrorIs(t, err, patient.ErrInvalidFilter)

	_, err = c.exec("", "list", "--days", "-1")
	assert.ErrorIs(t, err, patient.ErrInvalidFilter)

	_, err = c.exec("", "list", "--to", "2024-03-03")
	assert.ErrorIs(t, err, patient.ErrInvalidFilter)

	_, err = c.exec("", "export", "--to", "2024-03-03", "--out", filepath.Join(t.TempDir(), "x.xlsx"))
	assert.ErrorIs(t, err, patient.ErrInvalidFilter)
}

func TestExtractFromStdin(t *testing.T) {
	c := newCLI(t)
	text := "INSTITUTO MEXICANO\nNOMBRE: JUAN\nPEREZ GOMEZ\nNSS 1234 5678 901\n"

	out, err := c.exec(text, "extract", "--json")
	require.NoError(t, err)

	var res intake.ScanResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "JUAN PEREZ GOMEZ", res.Name)
	assert.Equal(t, "12345678901", res.Identifier)
	assert.Empty(t, res.Warnings)

	out, err = c.exec("sin datos\n", "extract")
	require.NoError(t, err)
	assert.Contains(t, out, intake.WarningNameNotFound)
	assert.Contains(t, out, intake.WarningIdentifierNotFound)
}

func TestScanWithoutEngine(t *testing.T) {
	c := newCLI(t)
	img := filepath.Join(t.TempDir(), "card.png")
	require.NoError(t, os.WriteFile(img, []byte("not an image"), 0o644))

	_, err := c.exec("", "scan", img)
	assert.Error(t, err)

	_, err = c.exec("", "register", "--scan", img)
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	c := newCLI(t)
	_, err := c.exec("", "register", "--name", "María Núñez", "--nss", "12345678901")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "pacientes.xlsx")
	out, err := c.exec("", "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, export.Header, rows[0])
	assert.Equal(t, "María Núñez", rows[1][0])
	assert.Equal(t, "12345678901", rows[1][1])
}

func TestToken(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "nutrireg.toml")
	secret := "cli-test-secret"
	require.NoError(t, os.WriteFile(cfgPath, []byte("[auth]\njwt_secret = \""+secret+"\"\n"), 0o644))

	c := newCLI(t)

	t.Run("Issues a valid token", func(t *testing.T) {
		out, err := c.exec("", "--config", cfgPath, "token", "--user", "nutri1", "--name", "Dra. Ruiz", "--ttl", "1h")
		require.NoError(t, err)

		claims, err := api.ValidateToken([]byte(secret), strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Equal(t, "nutri1", claims.Subject)
		assert.Equal(t, "Dra. Ruiz", claims.Name)
	})

	t.Run("User required", func(t *testing.T) {
		_, err := c.exec("", "--config", cfgPath, "token")
		assert.Error(t, err)
	})

	t.Run("Bad ttl", func(t *testing.T) {
		_, err := c.exec("", "--config", cfgPath, "token", "--user", "nutri1", "--ttl", "-5m")
		assert.Error(t, err)
	})
}

func TestRenderRecords(t *testing.T) {
	out := renderRecords([]patient.Record{
		{ID: 7, Name: "Juan Perez", Identifier: "12345678901", Type: patient.TypeNew, Date: "2024-05-01"},
	})
	for _, want := range []string{"ID", "Nombre", "Juan Perez", "Nuevo", "2024-05-01", "7"} {
		assert.Contains(t, out, want)
	}
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestRegisterFromScanAsksForConfirmation(t *testing.T) {
	ocrServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"IsErroredOnProcessing": false,
			"ParsedResults": []map[string]string{
				{"ParsedText": "NOMBRE:\nANA\nLOPEZ RUIZ\nNSS 1234 5678 901\n"},
			},
		})
	}))
	defer ocrServer.Close()
	t.Setenv("OCR_API_URL", ocrServer.URL)
	t.Setenv("OCR_API_KEY", "test-key")

	var png bytes.Buffer
	require.NoError(t, imaging.Encode(&png, imaging.New(60, 40, color.White), imaging.PNG))
	img := filepath.Join(t.TempDir(), "card.png")
	require.NoError(t, os.WriteFile(img, png.Bytes(), 0o644))

	tests := []struct {
		name     string
		stdin    string
		extra    []string
		stored   bool
		expected []string
	}{
		{"Declined", "n\n", nil, false, []string{"ANA LOPEZ RUIZ", "12345678901", "Store this record?", "Not stored"}},
		{"No answer", "", nil, false, []string{"Not stored"}},
		{"Accepted", "y\n", nil, true, []string{"ANA LOPEZ RUIZ", "Store this record?"}},
		{"Assume yes", "", []string{"--yes"}, true, []string{"ANA LOPEZ RUIZ"}},
		{"Flag overrides scanned name", "si\n", []string{"--name", "Ana López Ruiz"}, true, []string{"Ana López Ruiz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			args := append([]string{"--ocr", "ocrspace", "register", "--scan", img}, tt.extra...)
			out, err := c.exec(tt.stdin, args...)
			require.NoError(t, err)
			for _, want := range tt.expected {
				assert.Contains(t, out, want)
			}

			listed, err := c.exec("", "list", "--json", "--nss", "12345678901")
			require.NoError(t, err)
			var records []patient.Record
			require.NoError(t, json.Unmarshal([]byte(listed), &records))
			if tt.stored {
				assert.Len(t, records, 1)
			} else {
				assert.Empty(t, records)
			}
		})
	}
}
