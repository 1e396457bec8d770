package server

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/alfredjeanlab/records/internal/export"
	"github.com/alfredjeanlab/records/internal/model"
)

// Response headers describing the snapshot taken by a list-all read.
const (
	HeaderExportCSV      = "X-Export-Csv"
	HeaderExportJSON     = "X-Export-Json"
	HeaderExportWarnings = "X-Export-Warnings"
)

// searchInput is the body of POST /api/search.
type searchInput struct {
	Query string `json:"query"`
}

// handleListRecords handles GET /api/records/all.
func (s *RecordsServer) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, snap, err := s.listRecords(r.Context())
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	if snap != nil {
		if snap.CSVPath != "" {
			w.Header().Set(HeaderExportCSV, snap.CSVPath)
		}
		if snap.JSONPath != "" {
			w.Header().Set(HeaderExportJSON, snap.JSONPath)
		}
		w.Header().Set(HeaderExportWarnings, strconv.Itoa(len(snap.Warnings)))
	}

	writeJSON(w, http.StatusOK, recordsToViews(records))
}

// handleGetRecord handles GET /api/records/{id}.
func (s *RecordsServer) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	rec, err := s.getRecord(r.Context(), id)
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToView(rec))
}

// handleCreateRecord handles POST /api/records.
func (s *RecordsServer) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var in model.RecordInput
	if !decodeBody(w, r, &in) {
		return
	}

	rec, err := s.createRecord(r.Context(), in)
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, recordToView(rec))
}

// handleUpdateRecord handles PUT /api/records/{id}.
func (s *RecordsServer) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	var in model.RecordInput
	if !decodeBody(w, r, &in) {
		return
	}

	rec, err := s.updateRecord(r.Context(), id, in)
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToView(rec))
}

// handleDeleteRecord handles DELETE /api/records/{id}.
func (s *RecordsServer) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	if err := s.deleteRecord(r.Context(), id); err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSearchRecords handles POST /api/search.
func (s *RecordsServer) handleSearchRecords(w http.ResponseWriter, r *http.Request) {
	var in searchInput
	if !decodeBody(w, r, &in) {
		return
	}

	records, err := s.searchRecords(r.Context(), in.Query)
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordsToViews(records))
}

// handleExport handles POST /api/export.
func (s *RecordsServer) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.exportNow(r.Context())
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotToView(snap))
}

// handleDownloadCSV handles GET /api/export/csv. The file is built in memory
// and nothing is written to disk.
func (s *RecordsServer) handleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListRecords(r.Context())
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		s.writeRecordError(w, r, err)
		return
	}

	filename := export.FileName(time.Now(), export.FormatCSV)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
