package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	scansTotal          *prometheus.CounterVec
	ocrRequestDuration  *prometheus.HistogramVec
	registrationsTotal  *prometheus.CounterVec
	exportsTotal        *prometheus.CounterVec
	exportedRecordsSize prometheus.Histogram

	intakeMetricsOnce sync.Once
)

// initializeIntakeMetrics registers the card-scan and registration collectors
func initializeIntakeMetrics() {
	intakeMetricsOnce.Do(func() {
		scansTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrireg_scans_total",
				Help: "Card scans by outcome",
			},
			[]string{"outcome"}, // "complete", "partial", "empty", "ocr_error", "bad_image"
		)

		ocrRequestDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nutrireg_ocr_duration_seconds",
				Help:    "Time spent waiting on the OCR engine",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "status"},
		)

		registrationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrireg_registrations_total",
				Help: "Patient registrations by result",
			},
			[]string{"result"}, // "success", "validation_failed", "store_error"
		)

		exportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrireg_exports_total",
				Help: "Spreadsheet exports by filter kind",
			},
			[]string{"filter"},
		)

		exportedRecordsSize = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nutrireg_export_records",
				Help:    "Number of records per spreadsheet export",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		)

		GetInstance().registry.MustRegister(
			scansTotal,
			ocrRequestDuration,
			registrationsTotal,
			exportsTotal,
			exportedRecordsSize,
		)
	})
}

// RecordScan counts one card scan outcome
func RecordScan(outcome string) {
	if !businessEnabled() {
		return
	}
	initializeIntakeMetrics()

	scansTotal.WithLabelValues(outcome).Inc()
}

// RecordOCR observes the latency of one OCR engine call
func RecordOCR(backend string, startTime time.Time, err error) {
	if !businessEnabled() {
		return
	}
	initializeIntakeMetrics()

	status := "success"
	if err != nil {
		status = "error"
	}
	ocrRequestDuration.WithLabelValues(backend, status).Observe(time.Since(startTime).Seconds())
}

// RecordRegistration counts one registration attempt
func RecordRegistration(result string) {
	if !businessEnabled() {
		return
	}
	initializeIntakeMetrics()

	registrationsTotal.WithLabelValues(result).Inc()
}

// RecordExport counts one export and its size
func RecordExport(filter string, records int) {
	if !businessEnabled() {
		return
	}
	initializeIntakeMetrics()

	exportsTotal.WithLabelValues(filter).Inc()
	exportedRecordsSize.Observe(float64(records))
}
