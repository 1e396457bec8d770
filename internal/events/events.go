// Package events publishes record lifecycle and export notifications to a
// message bus.
package events

import (
	"context"
	"time"

	"github.com/alfredjeanlab/records/internal/model"
)

// Event topic constants
const (
	TopicRecordCreated   = "records.record.created"
	TopicRecordUpdated   = "records.record.updated"
	TopicRecordDeleted   = "records.record.deleted"
	TopicSnapshotWritten = "records.snapshot.written"

	// TopicAll matches every topic above.
	TopicAll = "records.>"
)

// Event types

type RecordCreated struct {
	Record *model.Record `json:"record"`
}

type RecordUpdated struct {
	Record *model.Record `json:"record"`
}

type RecordDeleted struct {
	ID int64 `json:"id"`
}

type SnapshotWritten struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Records  int       `json:"records"`
	CSVPath  string    `json:"csv_path,omitempty"`
	JSONPath string    `json:"json_path,omitempty"`
	Warnings int       `json:"warnings"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
