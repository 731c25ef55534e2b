// Package intake is the registration desk: it turns a card photo or pasted
// text into a pre-filled form, stores reviewed submissions, and produces the
// listings and spreadsheets staff download.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/nutrireg/internal/export"
	"stealthcompany.com/nutrireg/internal/extract"
	"stealthcompany.com/nutrireg/internal/metrics"
	"stealthcompany.com/nutrireg/internal/ocr"
	"stealthcompany.com/nutrireg/internal/patient"
)

// DefaultSummaryDays is the look-back window of the recent summary.
const DefaultSummaryDays = 3

const (
	WarningNameNotFound       = "name not found on the card; enter it manually"
	WarningIdentifierNotFound = "NSS not found on the card; enter it manually"
)

// ScanResult pre-fills the registration form. Absent fields stay empty and
// are listed in Warnings.
type ScanResult struct {
	Text string `json:"text"`
	extract.Result
	Warnings []string `json:"warnings,omitempty"`
}

// Service wires the OCR engine, extractor and store together.
type Service struct {
	engine      ocr.Engine
	store       patient.Store
	now         func() time.Time
	loc         *time.Location
	summaryDays int
	preprocess  ocr.PreprocessOptions
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the clinic time zone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithSummaryDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.summaryDays = days
		}
	}
}

func WithPreprocess(opts ocr.PreprocessOptions) Option {
	return func(s *Service) { s.preprocess = opts }
}

func New(engine ocr.Engine, store patient.Store, opts ...Option) *Service {
	s := &Service{
		engine:      engine,
		store:       store,
		now:         time.Now,
		loc:         time.Local,
		summaryDays: DefaultSummaryDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current calendar day in the clinic's time zone.
func (s *Service) Today() time.Time {
	return s.now().In(s.loc)
}

// Scan reads a card photo. A failed recognition is returned as *ocr.Error so
// the caller can offer manual entry.
func (s *Service) Scan(ctx context.Context, image []byte) (ScanResult, error) {
	prepared, err := ocr.Preprocess(image, s.preprocess)
	if err != nil {
		metrics.RecordScan("bad_image")
		return ScanResult{}, err
	}

	backend := s.engine.Name()
	start := time.Now()
	text, err := s.engine.ExtractText(ctx, prepared)
	metrics.RecordOCR(backend, start, err)
	if err != nil {
		metrics.RecordScan("ocr_error")
		var ocrErr *ocr.Error
		if !errors.As(err, &ocrErr) {
			err = &ocr.Error{Backend: backend, Err: err}
		}
		log.Warn().Err(err).Str("backend", backend).Msg("OCR failed, manual entry required")
		return ScanResult{}, err
	}

	res := s.Extract(text)
	metrics.RecordScan(outcome(res.Result))

	log.Info().
		Str("backend", backend).
		Dur("ocr_duration", time.Since(start)).
		Bool("name_found", res.HasName()).
		Bool("nss_found", res.HasIdentifier()).
		Str("nss_source", string(res.IdentifierSource)).
		Msg("Card scanned")

	return res, nil
}

// Extract runs the extractor on text that was already recognized.
func (s *Service) Extract(text string) ScanResult {
	res := ScanResult{Text: text, Result: extract.FromText(text)}
	if !res.HasName() {
		res.Warnings = append(res.Warnings, WarningNameNotFound)
	}
	if !res.HasIdentifier() {
		res.Warnings = append(res.Warnings, WarningIdentifierNotFound)
	}
	return res
}

func outcome(r extract.Result) string {
	switch {
	case r.HasName() && r.HasIdentifier():
		return "complete"
	case r.HasName() || r.HasIdentifier():
		return "partial"
	default:
		return "empty"
	}
}

// Register validates a reviewed submission, stamps it with today's date and
// stores it.
func (s *Service) Register(ctx context.Context, sub patient.Submission) (patient.Record, error) {
	rec, err := sub.Record(s.Today())
	if err != nil {
		metrics.RecordRegistration("validation_failed")
		return patient.Record{}, err
	}

	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		metrics.RecordRegistration("store_error")
		log.Error().Err(err).Msg("Failed to store patient")
		return patient.Record{}, err
	}
	rec.ID = id
	metrics.RecordRegistration("success")

	log.Info().
		Int64("id", rec.ID).
		Str("type", string(rec.Type)).
		Str("date", rec.Date).
		Msg("Patient registered")

	return rec, nil
}

// List runs any filter against the store.
func (s *Service) List(ctx context.Context, f patient.Filter) ([]patient.Record, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.store.Query(ctx, f)
}

// SummaryFilter selects the records of the last summary window.
func (s *Service) SummaryFilter() patient.Filter {
	return patient.LastDays(s.Today(), s.summaryDays)
}

// Summary lists the recent consultations, newest first.
func (s *Service) Summary(ctx context.Context) ([]patient.Record, error) {
	return s.List(ctx, s.SummaryFilter())
}

// ByDate lists one day's consultations in registration order.
func (s *Service) ByDate(ctx context.Context, day time.Time) ([]patient.Record, error) {
	return s.List(ctx, patient.OnDate(day))
}

// ByIdentifier lists every visit of one NSS, newest first.
func (s *Service) ByIdentifier(ctx context.Context, nss string) ([]patient.Record, error) {
	return s.List(ctx, patient.ByIdentifier(nss))
}

// Export renders the records selected by f and names the file after today.
func (s *Service) Export(ctx context.Context, f patient.Filter) ([]byte, string, error) {
	records, err := s.List(ctx, f)
	if err != nil {
		return nil, "", err
	}

	data, err := export.RenderTable(records)
	if err != nil {
		return nil, "", err
	}
	metrics.RecordExport(f.Kind.String(), len(records))

	return data, export.FileName(s.Today()), nil
}

// Import stores records that already carry their consultation date, such
// as rows read from a legacy register. Records are inserted oldest first so
// ids follow the calendar; within a day the input order is kept. It stops at
// the first store error and reports how many records were stored.
func (s *Service) Import(ctx context.Context, records []patient.Record) (int, error) {
	ordered := make([]patient.Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date < ordered[j].Date
	})

	for i, rec := range ordered {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := s.store.Insert(ctx, rec); err != nil {
			metrics.RecordRegistration("store_error")
			log.Debug().Str("nss", rec.Identifier).Str("date", rec.Date).Msg("Import stopped at record")
			return i, fmt.Errorf("import record %d of %d dated %s: %w", i+1, len(ordered), rec.Date, err)
		}
		metrics.RecordRegistration("imported")
	}

	log.Info().Int("records", len(ordered)).Msg("Import completed")
	return len(ordered), nil
}
