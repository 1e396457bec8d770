package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/records/internal/model"
	"github.com/alfredjeanlab/records/internal/store"
)

// recordColumns is the column list used for SELECT statements on the records table.
const recordColumns = `id, name, rights, status, remarks, "timestamp"`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateRecord(ctx context.Context, db executor, r *model.Record) error {
	row := db.QueryRowContext(ctx, `
		INSERT INTO records (name, rights, status, remarks, "timestamp")
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		r.Name,
		r.Rights,
		r.Status,
		nullString(r.Remarks),
		r.Timestamp,
	)
	if err := row.Scan(&r.ID); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func queryGetRecord(ctx context.Context, db executor, id int64) (*model.Record, error) {
	row := db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = $1`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func queryListRecords(ctx context.Context, db executor) ([]*model.Record, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return scanRecords(rows)
}

func queryUpdateRecord(ctx context.Context, db executor, r *model.Record) error {
	res, err := db.ExecContext(ctx, `
		UPDATE records SET name = $1, rights = $2, status = $3, remarks = $4
		WHERE id = $5`,
		r.Name,
		r.Rights,
		r.Status,
		nullString(r.Remarks),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("update record %d: %w", r.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record %d: %w", r.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", store.ErrNotFound, r.ID)
	}
	return nil
}

func queryDeleteRecord(ctx context.Context, db executor, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	return nil
}

func querySearchRecords(ctx context.Context, db executor, query string) ([]*model.Record, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM records
		WHERE LOWER(name) LIKE $1 ESCAPE '\'
		   OR LOWER(COALESCE(remarks, '')) LIKE $1 ESCAPE '\'
		ORDER BY id DESC`,
		store.LikePattern(query),
	)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	return scanRecords(rows)
}
