package sqlite

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/alfredjeanlab/records/internal/model"
)

// recordRow models the records row.
type recordRow struct {
	bun.BaseModel `bun:"table:records"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Rights    string    `bun:"rights,notnull"`
	Status    string    `bun:"status,notnull"`
	Remarks   string    `bun:"remarks,nullzero"`
	Timestamp time.Time `bun:"timestamp,nullzero"`
}

func fromDomain(r *model.Record) *recordRow {
	return &recordRow{
		ID:        r.ID,
		Name:      r.Name,
		Rights:    r.Rights,
		Status:    r.Status,
		Remarks:   r.Remarks,
		Timestamp: r.Timestamp,
	}
}

func (row recordRow) toDomain() *model.Record {
	return &model.Record{
		ID:        row.ID,
		Name:      row.Name,
		Rights:    row.Rights,
		Status:    row.Status,
		Remarks:   row.Remarks,
		Timestamp: row.Timestamp.UTC(),
	}
}

func toDomainSlice(rows []recordRow) []*model.Record {
	records := make([]*model.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toDomain())
	}
	return records
}
