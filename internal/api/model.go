package api

import (
	"github.com/golang-jwt/jwt/v5"
)

// Context key types to avoid collisions
type contextKey string

const (
	StaffKey contextKey = "staff"
)

// HTTP header constants
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	RequestIDHeader     = "X-Request-ID"
)

// HTTP path constants
const (
	HealthPath         = "/health"
	MetricsPath        = "/metrics"
	ScanPath           = "/api/scan"
	ExtractPath        = "/api/extract"
	PatientsPath       = "/api/patients"
	PatientsExportPath = "/api/patients/export"
)

// Error message constants
const (
	ErrAuthHeaderRequired = "Authorization header required"
	ErrInvalidAuthHeader  = "Invalid authorization header format"
	ErrInvalidToken       = "Invalid token"
	ErrInvalidJSON        = "Invalid JSON format"
	ErrInvalidRequest     = "Invalid request"
	ErrValidationFailed   = "Validation failed"
	ErrUnsupportedImage   = "Unsupported image"
	ErrImageTooLarge      = "Image too large"
	ErrOCRFailed          = "OCR failed"
	ErrStoreUnavailable   = "Storage unavailable"
	ErrInternal           = "Internal error"
)

// Log message constants
const (
	LogJWTValidationFailed = "JWT token validation failed"
)

// StaffClaims identifies the clinic staff member behind a request
type StaffClaims struct {
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	jwt.RegisteredClaims
}

// ErrorResponse is the body of every non-2xx JSON reply
type ErrorResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message,omitempty"`
	ManualEntry bool   `json:"manualEntry,omitempty"`
}

// ExtractRequest is the body of POST /api/extract
type ExtractRequest struct {
	Text string `json:"text"`
}
