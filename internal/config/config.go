package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// Storage backends.
const (
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
	BackendCouchbase = "couchbase"
	BackendMemory    = "memory"
)

// OCR backends.
const (
	OCRSpace     = "ocrspace"
	OCRTesseract = "tesseract"
	OCRNone      = "none"
)

// Server contains the HTTP listener settings.
type Server struct {
	Port            string `toml:"port"`
	MaxUploadBytes  int64  `toml:"max_upload_bytes"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
}

// Logging contains log level and optional Elasticsearch shipping.
type Logging struct {
	Level            string `toml:"level"`
	ElasticsearchURL string `toml:"elasticsearch_url"`
	Index            string `toml:"index"`
}

// Postgres contains the networked relational backend settings.
type Postgres struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
	MaxConns int    `toml:"max_conns"`
	MaxIdle  int    `toml:"max_idle"`
}

// DSN returns a postgres:// URL for lib/pq. Credentials and the database
// name are escaped, so empty or space-bearing values survive.
func (p Postgres) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.Database,
	}
	if p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	} else if p.User != "" {
		u.User = url.User(p.User)
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}

// SQLite contains the embedded backend settings.
type SQLite struct {
	Path string `toml:"path"`
}

// Couchbase contains the document-store backend settings.
type Couchbase struct {
	URL        string `toml:"url"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
	Bucket     string `toml:"bucket"`
	Scope      string `toml:"scope"`
	Collection string `toml:"collection"`
}

// Storage selects and configures the record store.
type Storage struct {
	Backend   string    `toml:"backend"`
	Postgres  Postgres  `toml:"postgres"`
	SQLite    SQLite    `toml:"sqlite"`
	Couchbase Couchbase `toml:"couchbase"`
}

// OCRSpaceAPI configures the networked OCR.space engine.
type OCRSpaceAPI struct {
	APIKey         string `toml:"api_key"`
	URL            string `toml:"url"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Retries        int    `toml:"retries"`
}

// Tesseract configures the local OCR engine.
type Tesseract struct {
	Language     string `toml:"language"`
	TessdataPath string `toml:"tessdata_path"`
}

// OCR selects the engine and the image preprocessing limits.
type OCR struct {
	Backend      string      `toml:"backend"`
	MaxDimension int         `toml:"max_dimension"`
	OCRSpace     OCRSpaceAPI `toml:"ocrspace"`
	Tesseract    Tesseract   `toml:"tesseract"`
}

// Clinic contains business settings.
type Clinic struct {
	Timezone    string `toml:"timezone"`
	SummaryDays int    `toml:"summary_days"`
}

// Auth enables staff bearer-token authentication when JWTSecret is set.
type Auth struct {
	JWTSecret string `toml:"jwt_secret"`
}

// Metrics toggles Prometheus collectors.
type Metrics struct {
	Business       bool `toml:"business"`
	System         bool `toml:"system"`
	SystemInterval int  `toml:"system_interval"`
}

// Config is the full service configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Logging Logging `toml:"logging"`
	Storage Storage `toml:"storage"`
	OCR     OCR     `toml:"ocr"`
	Clinic  Clinic  `toml:"clinic"`
	Auth    Auth    `toml:"auth"`
	Metrics Metrics `toml:"metrics"`
}

// Default returns the built-in configuration: embedded SQLite and OCR.space.
func Default() Config {
	return Config{
		Server: Server{
			Port:            "8080",
			MaxUploadBytes:  10 << 20,
			ShutdownTimeout: 30,
		},
		Logging: Logging{
			Level: "info",
			Index: "logs",
		},
		Storage: Storage{
			Backend: BackendSQLite,
			Postgres: Postgres{
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Database: "nutrireg",
				SSLMode:  "disable",
				MaxConns: 10,
				MaxIdle:  2,
			},
			SQLite: SQLite{Path: "nutrireg.db"},
			Couchbase: Couchbase{
				URL:        "couchbase://localhost",
				Bucket:     "nutrireg",
				Scope:      "_default",
				Collection: "_default",
			},
		},
		OCR: OCR{
			Backend:      OCRSpace,
			MaxDimension: 2000,
			OCRSpace: OCRSpaceAPI{
				URL:            "https://api.ocr.space/parse/image",
				Language:       "spa",
				TimeoutSeconds: 30,
				Retries:        2,
			},
			Tesseract: Tesseract{Language: "spa"},
		},
		Clinic: Clinic{
			Timezone:    "Local",
			SummaryDays: 3,
		},
		Metrics: Metrics{SystemInterval: 15},
	}
}

// Load builds the configuration from defaults, an optional TOML file, .env
// files and the process environment, in that order of precedence. Overrides
// (command-line flags) are applied last, before validation.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	loadDotEnv()
	cfg.applyEnv()
	for _, override := range overrides {
		override(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() {
	if err := godotenv.Load("../.env"); err == nil {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Msg("No .env file found, using process environment")
	}
}

func (c *Config) applyEnv() {
	setString(&c.Server.Port, "API_PORT")
	setInt64(&c.Server.MaxUploadBytes, "MAX_UPLOAD_BYTES")

	setString(&c.Logging.Level, "API_LOG_LEVEL")
	setString(&c.Logging.ElasticsearchURL, "ELASTICSEARCH_URL")
	setString(&c.Logging.Index, "ELASTICSEARCH_INDEX")

	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Storage.Postgres.Host, "DB_HOST")
	setInt(&c.Storage.Postgres.Port, "DB_PORT")
	setString(&c.Storage.Postgres.User, "DB_USER")
	setString(&c.Storage.Postgres.Password, "DB_PASSWORD")
	setString(&c.Storage.Postgres.Database, "DB_NAME")
	setString(&c.Storage.Postgres.SSLMode, "DB_SSLMODE")
	setString(&c.Storage.SQLite.Path, "SQLITE_PATH")
	setString(&c.Storage.Couchbase.URL, "COUCHBASE_URL")
	setString(&c.Storage.Couchbase.Username, "COUCHBASE_USERNAME")
	setString(&c.Storage.Couchbase.Password, "COUCHBASE_PASSWORD")
	setString(&c.Storage.Couchbase.Bucket, "COUCHBASE_BUCKET")
	setString(&c.Storage.Couchbase.Scope, "COUCHBASE_SCOPE")
	setString(&c.Storage.Couchbase.Collection, "COUCHBASE_COLLECTION")

	setString(&c.OCR.Backend, "OCR_BACKEND")
	setString(&c.OCR.OCRSpace.APIKey, "OCR_API_KEY")
	setString(&c.OCR.OCRSpace.URL, "OCR_API_URL")
	setString(&c.OCR.OCRSpace.Language, "OCR_LANGUAGE")
	setString(&c.OCR.Tesseract.Language, "OCR_LANGUAGE")
	setString(&c.OCR.Tesseract.TessdataPath, "TESSDATA_PREFIX")

	setString(&c.Clinic.Timezone, "CLINIC_TIMEZONE")
	setInt(&c.Clinic.SummaryDays, "SUMMARY_DAYS")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")

	setBool(&c.Metrics.Business, "ENABLE_BUSINESS_METRICS")
	setBool(&c.Metrics.System, "ENABLE_SYSTEM_METRICS")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendPostgres:
		if c.Storage.Postgres.Host == "" || c.Storage.Postgres.Database == "" {
			errs = append(errs, errors.New("storage.postgres: host and database are required"))
		}
	case BackendSQLite:
		if c.Storage.SQLite.Path == "" {
			errs = append(errs, errors.New("storage.sqlite.path is required"))
		}
	case BackendCouchbase:
		if c.Storage.Couchbase.URL == "" || c.Storage.Couchbase.Bucket == "" {
			errs = append(errs, errors.New("storage.couchbase: url and bucket are required"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of postgres, sqlite, couchbase, memory", c.Storage.Backend))
	}

	switch c.OCR.Backend {
	case OCRSpace:
		if c.OCR.OCRSpace.APIKey == "" {
			errs = append(errs, errors.New("ocr.ocrspace.api_key (OCR_API_KEY) is required"))
		}
	case OCRTesseract, OCRNone:
	default:
		errs = append(errs, fmt.Errorf("ocr.backend %q is not one of ocrspace, tesseract, none", c.OCR.Backend))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("clinic.timezone: %w", err))
	}
	if c.Clinic.SummaryDays < 0 {
		errs = append(errs, errors.New("clinic.summary_days must not be negative"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}

	return errors.Join(errs...)
}

// Location resolves the clinic time zone used to stamp record dates.
func (c *Config) Location() (*time.Location, error) {
	if c.Clinic.Timezone == "" || strings.EqualFold(c.Clinic.Timezone, "Local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Clinic.Timezone)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		} else {
			log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-numeric environment value")
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		} else {
			log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-numeric environment value")
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}
