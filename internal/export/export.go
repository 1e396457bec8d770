// Package export writes point-in-time CSV and JSON snapshots of the record
// set to disk and mirrors them to remote destinations.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/alfredjeanlab/records/internal/model"
)

// Columns is the fixed column order shared by the CSV header and the JSON
// object keys.
var Columns = []string{"id", "name", "rights", "status", "remarks", "timestamp"}

// TimestampLayout formats record timestamps in both export formats.
const TimestampLayout = time.RFC3339

// row is the serialized shape of a record. Field order defines JSON key order.
type row struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Rights    string `json:"rights"`
	Status    string `json:"status"`
	Remarks   string `json:"remarks"`
	Timestamp string `json:"timestamp"`
}

func toRow(r *model.Record) row {
	return row{
		ID:        r.ID,
		Name:      r.Name,
		Rights:    r.Rights,
		Status:    r.Status,
		Remarks:   r.Remarks,
		Timestamp: r.Timestamp.UTC().Format(TimestampLayout),
	}
}

// WriteCSV writes records as CSV with a header row, in the order given.
func WriteCSV(w io.Writer, records []*model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		x := toRow(r)
		if err := cw.Write([]string{
			strconv.FormatInt(x.ID, 10),
			x.Name,
			x.Rights,
			x.Status,
			x.Remarks,
			x.Timestamp,
		}); err != nil {
			return fmt.Errorf("write csv record %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteJSON writes records as a JSON array indented by four spaces, in the
// order given. An empty set is written as [].
func WriteJSON(w io.Writer, records []*model.Record) error {
	rows := make([]row, 0, len(records))
	for _, r := range records {
		rows = append(rows, toRow(r))
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
