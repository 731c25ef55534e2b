// Command nutrireg-ingest loads legacy consultation registers (XLSX files
// with the export layout) into the configured store. Rows that fail
// validation are logged and skipped; a store failure aborts the run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/nutrireg/internal/app"
	"stealthcompany.com/nutrireg/internal/config"
	"stealthcompany.com/nutrireg/internal/export"
	"stealthcompany.com/nutrireg/internal/intake"
)

func main() {
	configPath := flag.String("config", os.Getenv("NUTRIREG_CONFIG"), "path to TOML configuration file")
	dryRun := flag.Bool("dry-run", false, "validate the workbooks without storing anything")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config FILE] [-dry-run] WORKBOOK.xlsx...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Importing never needs OCR
	cfg, err := config.Load(*configPath, func(c *config.Config) {
		c.OCR.Backend = config.OCRNone
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := app.StartLogging("nutrireg-ingest", cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		os.Exit(1)
	}

	log.Info().Bool("dry_run", *dryRun).Int("files", flag.NArg()).Msg("Starting nutrireg-ingest")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize registry")
	}

	total, skipped, err := ingestAll(ctx, registry.Service, flag.Args(), *dryRun)
	if closeErr := registry.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("Failed to close store")
	}
	if err != nil {
		log.Fatal().Err(err).Int("stored", total).Msg("Ingestion aborted")
	}

	log.Info().Int("stored", total).Int("skipped_rows", skipped).Msg("Ingestion completed successfully")
}

// ingestAll processes files in order and returns the stored and skipped
// row counts.
func ingestAll(ctx context.Context, svc *intake.Service, paths []string, dryRun bool) (int, int, error) {
	var stored, skipped int
	for _, path := range paths {
		n, bad, err := ingestFile(ctx, svc, path, dryRun)
		stored += n
		skipped += bad
		if err != nil {
			return stored, skipped, err
		}
	}
	return stored, skipped, nil
}

func ingestFile(ctx context.Context, svc *intake.Service, path string, dryRun bool) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	records, rowErrs, err := export.ReadTable(f)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", path, err)
	}
	for _, rowErr := range rowErrs {
		log.Warn().Err(rowErr).Str("file", path).Msg("Skipping row")
	}

	logger := log.With().Str("file", path).Int("records", len(records)).Int("skipped", len(rowErrs)).Logger()
	if dryRun {
		logger.Info().Msg("Workbook validated")
		return 0, len(rowErrs), nil
	}

	n, err := svc.Import(ctx, records)
	if err != nil {
		return n, len(rowErrs), fmt.Errorf("%s: %w", path, err)
	}
	logger.Info().Msg("Workbook imported")
	return n, len(rowErrs), nil
}
