// Package client provides a transport-agnostic interface for the records
// service and an HTTP/JSON implementation that talks to its REST API.
package client

import (
	"context"

	"github.com/alfredjeanlab/records/internal/model"
)

// RecordsClient is the interface the rd CLI commands use to communicate with
// the records server.
type RecordsClient interface {
	// Records
	ListRecords(ctx context.Context) (*ListResult, error)
	GetRecord(ctx context.Context, id int64) (*model.Record, error)
	CreateRecord(ctx context.Context, in model.RecordInput) (*model.Record, error)
	UpdateRecord(ctx context.Context, id int64, in model.RecordInput) (*model.Record, error)
	DeleteRecord(ctx context.Context, id int64) error
	SearchRecords(ctx context.Context, query string) ([]*model.Record, error)

	// Export
	Export(ctx context.Context) (*ExportResult, error)
	DownloadCSV(ctx context.Context) (filename string, data []byte, err error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// ListResult is the full record listing plus the snapshot the server wrote
// for it. Paths are empty when the server exports in the background.
type ListResult struct {
	Records  []*model.Record
	CSVPath  string
	JSONPath string
	Warnings int
}

// ExportWarning is a snapshot file the server failed to write.
type ExportWarning struct {
	Format string `json:"format"`
	Path   string `json:"path"`
	Error  string `json:"error"`
}

// ExportResult is the response to an explicit export.
type ExportResult struct {
	ID       string          `json:"id"`
	Records  int             `json:"records"`
	CSVPath  string          `json:"csv_path"`
	JSONPath string          `json:"json_path"`
	Warnings []ExportWarning `json:"warnings"`
}
