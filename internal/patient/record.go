package patient

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DateLayout is the calendar-date format used on the wire and in storage.
const DateLayout = "2006-01-02"

var (
	ErrMissingName       = errors.New("patient name is required")
	ErrMissingIdentifier = errors.New("patient NSS is required")
	ErrUnknownType       = errors.New("unknown patient type")
)

// Type distinguishes first visits from follow-up consultations.
type Type string

const (
	TypeNew      Type = "new"
	TypeFollowUp Type = "follow_up"
)

// ParseType accepts the canonical codes and the Spanish form labels.
// An empty value means a new patient.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "new", "nuevo":
		return TypeNew, nil
	case "follow_up", "follow-up", "followup", "subsecuente":
		return TypeFollowUp, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// Label returns the display label used on exports and listings.
func (t Type) Label() string {
	switch t {
	case TypeNew:
		return "Nuevo"
	case TypeFollowUp:
		return "Subsecuente"
	default:
		return string(t)
	}
}

// Record is one stored consultation. Records are never updated or deleted.
type Record struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"nss"`
	Type       Type   `json:"type"`
	Note       string `json:"note"`
	Date       string `json:"date"`
}

// ValidationError lists every failed field of a record.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error { return e.Errs }

// Validate enforces the storage invariant: both name and NSS must be
// non-blank, and the date must be a calendar date.
func (r Record) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, ErrMissingName)
	}
	if strings.TrimSpace(r.Identifier) == "" {
		errs = append(errs, ErrMissingIdentifier)
	}
	if r.Type != TypeNew && r.Type != TypeFollowUp {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownType, r.Type))
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		errs = append(errs, fmt.Errorf("invalid date %q: %w", r.Date, err))
	}
	if len(errs) > 0 {
		return &ValidationError{Errs: errs}
	}
	return nil
}

// Submission is what staff send after reviewing the pre-filled form.
type Submission struct {
	Name       string `json:"name"`
	Identifier string `json:"nss"`
	Type       string `json:"type"`
	Note       string `json:"note"`
}

// Record builds a normalized record dated on the given day. Names are
// trimmed and NFC-normalized so OCR and keyboard input compare equal.
func (s Submission) Record(day time.Time) (Record, error) {
	typ, err := ParseType(s.Type)
	if err != nil {
		return Record{}, &ValidationError{Errs: []error{err}}
	}
	rec := Record{
		Name:       norm.NFC.String(strings.TrimSpace(s.Name)),
		Identifier: strings.TrimSpace(s.Identifier),
		Type:       typ,
		Note:       strings.TrimSpace(s.Note),
		Date:       day.Format(DateLayout),
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}
