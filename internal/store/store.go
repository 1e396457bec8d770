package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/records/internal/model"
)

// ErrNotFound is returned (wrapped) when an operation addresses a record id
// that does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence interface for records.
type Store interface {
	// CreateRecord assigns the next id and the creation timestamp, persists
	// the record, and fills r with the stored values.
	CreateRecord(ctx context.Context, r *model.Record) error
	GetRecord(ctx context.Context, id int64) (*model.Record, error)
	// ListRecords returns every record, newest (highest id) first.
	ListRecords(ctx context.Context) ([]*model.Record, error)
	// UpdateRecord replaces the mutable fields of the record with r.ID and
	// reloads r from storage. ID and Timestamp are never written.
	UpdateRecord(ctx context.Context, r *model.Record) error
	DeleteRecord(ctx context.Context, id int64) error
	// SearchRecords returns records whose name or remarks contain query,
	// case-insensitively, newest first. An empty query matches every record.
	SearchRecords(ctx context.Context, query string) ([]*model.Record, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// Backend names understood by ParseURL.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// ParseURL maps a database URL onto a backend and the DSN that backend's
// driver expects. postgres:// and postgresql:// URLs are passed through;
// sqlite://path, file: URIs and bare paths select SQLite.
func ParseURL(databaseURL string) (backend, dsn string, err error) {
	switch {
	case databaseURL == "":
		return "", "", fmt.Errorf("database url is empty")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return BackendPostgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite url %q has no path", databaseURL)
		}
		return BackendSQLite, path, nil
	case strings.HasPrefix(databaseURL, "file:"):
		return BackendSQLite, databaseURL, nil
	case strings.Contains(databaseURL, "://"):
		return "", "", fmt.Errorf("unsupported database url scheme in %q", databaseURL)
	default:
		return BackendSQLite, databaseURL, nil
	}
}

// LikePattern turns a free-text query into a lower-cased LIKE pattern that
// matches it as a literal substring. Backslash is the escape character.
func LikePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(query)) + "%"
}
