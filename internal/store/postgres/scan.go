package postgres

import (
	"database/sql"
	"fmt"

	"github.com/alfredjeanlab/records/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row into a model.Record.
// The row must contain columns in the order defined by recordColumns.
func scanRecord(row scannable) (*model.Record, error) {
	var r model.Record
	var remarks sql.NullString

	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Rights,
		&r.Status,
		&remarks,
		&r.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	r.Remarks = remarks.String
	r.Timestamp = r.Timestamp.UTC()
	return &r, nil
}

// scanRecords drains rows into a slice and closes them. An empty result is
// a non-nil empty slice.
func scanRecords(rows *sql.Rows) ([]*model.Record, error) {
	defer rows.Close()

	records := []*model.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// nullString converts an empty string to a NULL sql.NullString.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
