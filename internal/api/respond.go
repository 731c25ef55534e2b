package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"stealthcompany.com/nutrireg/internal/ocr"
	"stealthcompany.com/nutrireg/internal/patient"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, errMsg, message string) {
	writeJSON(w, status, ErrorResponse{Error: errMsg, Message: message})
}

// writeFailure maps domain errors to HTTP statuses
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	var (
		ocrErr   *ocr.Error
		maxBytes *http.MaxBytesError
	)
	switch {
	case errors.Is(err, patient.ErrInvalidFilter), errors.Is(err, patient.ErrUnknownType):
		writeError(w, http.StatusBadRequest, ErrInvalidRequest, err.Error())
	case errors.Is(err, patient.ErrMissingName), errors.Is(err, patient.ErrMissingIdentifier):
		writeError(w, http.StatusUnprocessableEntity, ErrValidationFailed, err.Error())
	case errors.Is(err, ocr.ErrImageTooLarge), errors.As(err, &maxBytes):
		writeError(w, http.StatusRequestEntityTooLarge, ErrImageTooLarge, err.Error())
	case errors.Is(err, ocr.ErrUnsupportedImage):
		writeError(w, http.StatusUnsupportedMediaType, ErrUnsupportedImage, err.Error())
	case errors.As(err, &ocrErr):
		logger.Warn().Err(err).Str("backend", ocrErr.Backend).Msg("OCR failed")
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:       ErrOCRFailed,
			Message:     "the card could not be read; enter the data manually",
			ManualEntry: true,
		})
	case errors.Is(err, patient.ErrStoreUnavailable):
		logger.Error().Err(err).Msg("Store unavailable")
		writeError(w, http.StatusServiceUnavailable, ErrStoreUnavailable, "")
	default:
		logger.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, ErrInternal, "")
	}
}
