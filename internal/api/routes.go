package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stealthcompany.com/nutrireg/internal/metrics"
)

// SetupRoutes configures and returns the HTTP router. Auth is enabled when
// jwtSecret is non-empty.
func SetupRoutes(h *Handler, jwtSecret string) *mux.Router {
	r := mux.NewRouter()

	// Add middleware to all routes
	r.Use(RequestIDMiddleware)
	r.Use(metrics.MetricsMiddleware)
	if jwtSecret != "" {
		r.Use(AuthMiddleware([]byte(jwtSecret)))
	}

	r.HandleFunc(HealthPath, h.Health).Methods(http.MethodGet)
	r.Handle(MetricsPath, promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(timeoutMiddleware)
	api.HandleFunc(ScanPath, h.Scan).Methods(http.MethodPost)
	api.HandleFunc(ExtractPath, h.Extract).Methods(http.MethodPost)
	api.HandleFunc(PatientsExportPath, h.ExportPatients).Methods(http.MethodGet)
	api.HandleFunc(PatientsPath, h.CreatePatient).Methods(http.MethodPost)
	api.HandleFunc(PatientsPath, h.ListPatients).Methods(http.MethodGet)

	return r
}

// requestTimeout bounds handlers that reach the OCR engine or the store
const requestTimeout = 60 * time.Second

func timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
