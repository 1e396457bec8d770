package server

import (
	"time"

	"github.com/alfredjeanlab/records/internal/export"
	"github.com/alfredjeanlab/records/internal/model"
)

// RecordView is the wire shape of a record.
type RecordView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Rights    string `json:"rights"`
	Status    string `json:"status"`
	Remarks   string `json:"remarks"`
	Timestamp string `json:"timestamp"`
}

// SnapshotView is the response to an explicit export request.
type SnapshotView struct {
	ID       string            `json:"id"`
	Records  int               `json:"records"`
	CSVPath  string            `json:"csv_path"`
	JSONPath string            `json:"json_path"`
	Warnings []*export.Warning `json:"warnings"`
}

func recordToView(r *model.Record) RecordView {
	return RecordView{
		ID:        r.ID,
		Name:      r.Name,
		Rights:    r.Rights,
		Status:    r.Status,
		Remarks:   r.Remarks,
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
	}
}

func recordsToViews(records []*model.Record) []RecordView {
	views := make([]RecordView, 0, len(records))
	for _, r := range records {
		views = append(views, recordToView(r))
	}
	return views
}

func snapshotToView(snap *export.Snapshot) SnapshotView {
	warnings := snap.Warnings
	if warnings == nil {
		warnings = []*export.Warning{}
	}
	return SnapshotView{
		ID:       snap.ID,
		Records:  snap.Records,
		CSVPath:  snap.CSVPath,
		JSONPath: snap.JSONPath,
		Warnings: warnings,
	}
}
