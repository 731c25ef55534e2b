package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"stealthcompany.com/nutrireg/internal/export"
	"stealthcompany.com/nutrireg/internal/intake"
	"stealthcompany.com/nutrireg/internal/ocr"
	"stealthcompany.com/nutrireg/internal/patient"
)

// multipartOverhead leaves room for form boundaries around the image part
const multipartOverhead = 1 << 20

// Handler serves the registration desk endpoints
type Handler struct {
	svc            *intake.Service
	maxUploadBytes int64
}

// NewHandler creates a handler. maxUploadBytes bounds the card photo size.
func NewHandler(svc *intake.Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Scan handles POST /api/scan with a multipart "image" field
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeFailure(w, r, fmt.Errorf("%w: %w", ocr.ErrUnsupportedImage, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidRequest, "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		writeFailure(w, r, ocr.ErrImageTooLarge)
		return
	}

	zerolog.Ctx(r.Context()).Debug().
		Str("filename", header.Filename).
		Int("bytes", len(data)).
		Msg("Card image received")

	res, err := h.svc.Scan(r.Context(), data)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Extract handles POST /api/extract for text that was read elsewhere
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Extract(req.Text))
}

// CreatePatient handles POST /api/patients
func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var sub patient.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON, err.Error())
		return
	}

	rec, err := h.svc.Register(r.Context(), sub)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// ListPatients handles GET /api/patients
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromQuery(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	records, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filter":   f.Kind.String(),
		"count":    len(records),
		"patients": records,
	})
}

// ExportPatients handles GET /api/patients/export
func (h *Handler) ExportPatients(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromQuery(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	data, name, err := h.svc.Export(r.Context(), f)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// filterFromQuery picks the filter from ?nss=, ?date=, ?from=&to= or ?days=,
// in that order, defaulting to the recent summary
func (h *Handler) filterFromQuery(r *http.Request) (patient.Filter, error) {
	q := r.URL.Query()

	if nss := q.Get("nss"); nss != "" {
		return patient.ByIdentifier(nss), nil
	}
	if date := q.Get("date"); date != "" {
		return patient.Filter{Kind: patient.FilterExactDate, Date: date}, nil
	}
	if from := q.Get("from"); from != "" {
		return patient.Filter{Kind: patient.FilterDateRange, From: from, To: q.Get("to")}, nil
	}
	if q.Get("to") != "" {
		return patient.Filter{}, fmt.Errorf("%w: to requires from", patient.ErrInvalidFilter)
	}
	if days := q.Get("days"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return patient.Filter{}, fmt.Errorf("%w: days must be a non-negative integer", patient.ErrInvalidFilter)
		}
		return patient.LastDays(h.svc.Today(), n), nil
	}
	return h.svc.SummaryFilter(), nil
}
