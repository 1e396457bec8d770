package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/records/internal/model"
	"github.com/alfredjeanlab/records/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// NewHTTPHandler returns an http.Handler with all routes registered.
func (s *RecordsServer) NewHTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/records/all", s.handleListRecords)
	mux.HandleFunc("POST /api/records", s.handleCreateRecord)
	mux.HandleFunc("GET /api/records/{id}", s.handleGetRecord)
	mux.HandleFunc("PUT /api/records/{id}", s.handleUpdateRecord)
	mux.HandleFunc("DELETE /api/records/{id}", s.handleDeleteRecord)
	mux.HandleFunc("POST /api/search", s.handleSearchRecords)
	mux.HandleFunc("POST /api/export", s.handleExport)
	mux.HandleFunc("GET /api/export/csv", s.handleDownloadCSV)
	mux.HandleFunc("GET /api/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return RequestIDMiddleware(LoggingMiddleware(s.logger, RecoveryMiddleware(s.logger, mux)))
}

// handleHealth handles GET /api/health.
func (s *RecordsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody decodes a JSON request body into v. Unknown fields are ignored.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// parseID reads the {id} path value as a record id.
func parseID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &model.ValidationError{Errors: []model.FieldError{{
			Field:   "id",
			Message: "must be an integer, got " + strconv.Quote(raw),
		}}}
	}
	return id, nil
}

// writeRecordError maps an error from the record operations to a response.
// Storage failures are logged and reported without detail.
func (s *RecordsServer) writeRecordError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  ve.Error(),
			"fields": ve.Errors,
		})
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
