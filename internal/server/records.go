package server

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/records/internal/events"
	"github.com/alfredjeanlab/records/internal/export"
	"github.com/alfredjeanlab/records/internal/model"
)

// listRecords returns every record, newest first, and snapshots them.
// The snapshot is nil when exports run in the background.
func (s *RecordsServer) listRecords(ctx context.Context) ([]*model.Record, *export.Snapshot, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list records: %w", err)
	}
	var snap *export.Snapshot
	if s.exporter != nil {
		snap = s.exporter.Trigger(ctx, records)
	}
	return records, snap, nil
}

// getRecord returns the record with the given id.
func (s *RecordsServer) getRecord(ctx context.Context, id int64) (*model.Record, error) {
	r, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return r, nil
}

// createRecord validates in and stores it as a new record.
func (s *RecordsServer) createRecord(ctx context.Context, in model.RecordInput) (*model.Record, error) {
	if err := model.ValidateRecordInput(in); err != nil {
		return nil, err
	}

	r := &model.Record{}
	r.Apply(in)
	if err := s.store.CreateRecord(ctx, r); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	s.publish(ctx, events.TopicRecordCreated, events.RecordCreated{Record: r})
	return r, nil
}

// updateRecord replaces the mutable fields of record id with in.
func (s *RecordsServer) updateRecord(ctx context.Context, id int64, in model.RecordInput) (*model.Record, error) {
	if err := model.ValidateRecordInput(in); err != nil {
		return nil, err
	}

	r := &model.Record{ID: id}
	r.Apply(in)
	if err := s.store.UpdateRecord(ctx, r); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}

	s.publish(ctx, events.TopicRecordUpdated, events.RecordUpdated{Record: r})
	return r, nil
}

// deleteRecord removes record id.
func (s *RecordsServer) deleteRecord(ctx context.Context, id int64) error {
	if err := s.store.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.publish(ctx, events.TopicRecordDeleted, events.RecordDeleted{ID: id})
	return nil
}

// searchRecords returns records whose name or remarks contain query,
// ignoring case, newest first.
func (s *RecordsServer) searchRecords(ctx context.Context, query string) ([]*model.Record, error) {
	records, err := s.store.SearchRecords(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	return records, nil
}

// exportNow snapshots every record synchronously, regardless of the
// writer's async setting.
func (s *RecordsServer) exportNow(ctx context.Context) (*export.Snapshot, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("export is not configured")
	}
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return s.exporter.Snapshot(ctx, records), nil
}
