// Package app assembles the collaborators shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/nutrireg/internal/config"
	"stealthcompany.com/nutrireg/internal/intake"
	"stealthcompany.com/nutrireg/internal/metrics"
	"stealthcompany.com/nutrireg/internal/ocr"
	"stealthcompany.com/nutrireg/internal/patient"
	"stealthcompany.com/nutrireg/internal/store"
	"stealthcompany.com/nutrireg/pkg/zerolog_config"
)

// App owns the store and the intake service built on top of it.
type App struct {
	Config  *config.Config
	Store   patient.Store
	Engine  ocr.Engine
	Service *intake.Service
}

// StartLogging configures the global logger for the named binary.
func StartLogging(name string, cfg config.Logging) error {
	zerolog_config.SetAppPrefix(name)
	return zerolog_config.StartupWithEnv(cfg.ElasticsearchURL, cfg.Index, cfg.Level)
}

// New opens the configured store and OCR engine. Close releases them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	metrics.Configure(cfg.Metrics.Business, cfg.Metrics.System)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	engine, err := ocr.New(cfg.OCR)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	svc := intake.New(engine, st,
		intake.WithLocation(loc),
		intake.WithSummaryDays(cfg.Clinic.SummaryDays),
		intake.WithPreprocess(ocr.PreprocessOptions{
			MaxBytes:     cfg.Server.MaxUploadBytes,
			MaxDimension: cfg.OCR.MaxDimension,
			Contrast:     20,
		}),
	)

	log.Info().
		Str("storage", cfg.Storage.Backend).
		Str("ocr", engine.Name()).
		Str("timezone", loc.String()).
		Int("summary_days", cfg.Clinic.SummaryDays).
		Msg("Registry ready")

	return &App{Config: cfg, Store: st, Engine: engine, Service: svc}, nil
}

// StartSystemMetrics runs the host collector until ctx is done.
func (a *App) StartSystemMetrics(ctx context.Context) {
	interval := time.Duration(a.Config.Metrics.SystemInterval) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	metrics.StartSystemMetrics(ctx, interval)
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
