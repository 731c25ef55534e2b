package patient

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FilterKind selects one of the three supported queries.
type FilterKind int

const (
	// FilterDateRange lists records between From and To (inclusive), newest first.
	FilterDateRange FilterKind = iota + 1
	// FilterExactDate lists one day's records in registration order.
	FilterExactDate
	// FilterIdentifier lists every visit of one NSS, newest first.
	FilterIdentifier
)

func (k FilterKind) String() string {
	switch k {
	case FilterDateRange:
		return "date_range"
	case FilterExactDate:
		return "exact_date"
	case FilterIdentifier:
		return "identifier"
	default:
		return "unknown"
	}
}

var ErrInvalidFilter = errors.New("invalid patient filter")

// Filter is the query argument of Store.Query. Dates use DateLayout; an
// empty To leaves a date range open-ended.
type Filter struct {
	Kind       FilterKind
	From       string
	To         string
	Date       string
	Identifier string
}

// LastDays returns the recent-summary filter: from today minus days onwards.
func LastDays(today time.Time, days int) Filter {
	return Filter{
		Kind: FilterDateRange,
		From: today.AddDate(0, 0, -days).Format(DateLayout),
	}
}

// Between returns an inclusive date range filter.
func Between(from, to time.Time) Filter {
	return Filter{
		Kind: FilterDateRange,
		From: from.Format(DateLayout),
		To:   to.Format(DateLayout),
	}
}

// OnDate returns the history filter for one calendar day.
func OnDate(day time.Time) Filter {
	return Filter{Kind: FilterExactDate, Date: day.Format(DateLayout)}
}

// ByIdentifier returns the NSS lookup filter.
func ByIdentifier(nss string) Filter {
	return Filter{Kind: FilterIdentifier, Identifier: strings.TrimSpace(nss)}
}

// Validate checks that the fields required by Kind are present and well formed.
func (f Filter) Validate() error {
	switch f.Kind {
	case FilterDateRange:
		if err := checkDate("from", f.From); err != nil {
			return err
		}
		if f.To != "" {
			if err := checkDate("to", f.To); err != nil {
				return err
			}
			if f.To < f.From {
				return fmt.Errorf("%w: range ends before it starts", ErrInvalidFilter)
			}
		}
	case FilterExactDate:
		return checkDate("date", f.Date)
	case FilterIdentifier:
		if f.Identifier == "" {
			return fmt.Errorf("%w: %w", ErrInvalidFilter, ErrMissingIdentifier)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidFilter, f.Kind)
	}
	return nil
}

// Match reports whether r satisfies the filter. Used by stores that cannot
// push the predicate down to a query engine.
func (f Filter) Match(r Record) bool {
	switch f.Kind {
	case FilterDateRange:
		return r.Date >= f.From && (f.To == "" || r.Date <= f.To)
	case FilterExactDate:
		return r.Date == f.Date
	case FilterIdentifier:
		return r.Identifier == f.Identifier
	default:
		return false
	}
}

// Less orders two matching records the way Query results are returned.
func (f Filter) Less(a, b Record) bool {
	if f.Kind == FilterExactDate {
		return a.ID < b.ID
	}
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	return a.ID > b.ID
}

func checkDate(field, value string) error {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return fmt.Errorf("%w: %s %q is not a YYYY-MM-DD date", ErrInvalidFilter, field, value)
	}
	return nil
}
