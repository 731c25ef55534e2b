package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"stealthcompany.com/nutrireg/internal/intake"
	"stealthcompany.com/nutrireg/internal/patient"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// readInput reads a file, or stdin when path is "" or "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// filterFlags are shared by list and export
type filterFlags struct {
	days int
	date string
	nss  string
	from string
	to   string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.days, "days", intake.DefaultSummaryDays, "Records from the last N days")
	cmd.Flags().StringVar(&f.date, "date", "", "Records of one day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.nss, "nss", "", "Visit history of one NSS")
	cmd.Flags().StringVar(&f.from, "from", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Range end (YYYY-MM-DD, inclusive)")
}

func (f *filterFlags) filter(cmd *cobra.Command, svc *intake.Service) (patient.Filter, error) {
	switch {
	case f.nss != "":
		return patient.ByIdentifier(f.nss), nil
	case f.date != "":
		return patient.Filter{Kind: patient.FilterExactDate, Date: f.date}, nil
	case f.from != "":
		return patient.Filter{Kind: patient.FilterDateRange, From: f.from, To: f.to}, nil
	case f.to != "":
		return patient.Filter{}, fmt.Errorf("%w: --to requires --from", patient.ErrInvalidFilter)
	case cmd.Flags().Changed("days"):
		if f.days < 0 {
			return patient.Filter{}, fmt.Errorf("%w: --days must not be negative", patient.ErrInvalidFilter)
		}
		return patient.LastDays(svc.Today(), f.days), nil
	default:
		return svc.SummaryFilter(), nil
	}
}

func describeFilter(f patient.Filter) string {
	switch f.Kind {
	case patient.FilterIdentifier:
		return "NSS " + f.Identifier
	case patient.FilterExactDate:
		return "date " + f.Date
	case patient.FilterDateRange:
		if f.To == "" {
			return "since " + f.From
		}
		return f.From + " to " + f.To
	default:
		return f.Kind.String()
	}
}

func parseTTL(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid --ttl %q", s)
	}
	return d, nil
}
