package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/records/internal/model"
)

var fixedTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func sampleRecords() []*model.Record {
	return []*model.Record{
		{ID: 3, Name: "Carol, Jr.", Rights: "Staff", Status: "On Hold", Remarks: "line one\nline \"two\"", Timestamp: fixedTime.Add(2 * time.Hour)},
		{ID: 2, Name: "Bob", Rights: "User", Status: "Inactive", Remarks: "", Timestamp: fixedTime.Add(time.Hour)},
		{ID: 1, Name: "Zoë <admin>", Rights: "Admin", Status: "Active", Remarks: "a & b", Timestamp: fixedTime},
	}
}

// parseCSV reads records back from WriteCSV output.
func parseCSV(t *testing.T, r io.Reader) []*model.Record {
	t.Helper()
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) == 0 || !reflect.DeepEqual(rows[0], Columns) {
		t.Fatalf("csv header = %v, want %v", rows[0], Columns)
	}
	records := []*model.Record{}
	for _, row := range rows[1:] {
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			t.Fatalf("parse id %q: %v", row[0], err)
		}
		ts, err := time.Parse(TimestampLayout, row[5])
		if err != nil {
			t.Fatalf("parse timestamp %q: %v", row[5], err)
		}
		records = append(records, &model.Record{
			ID: id, Name: row[1], Rights: row[2], Status: row[3], Remarks: row[4], Timestamp: ts.UTC(),
		})
	}
	return records
}

// parseJSON reads records back from WriteJSON output.
func parseJSON(t *testing.T, r io.Reader) []*model.Record {
	t.Helper()
	var rows []row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	records := []*model.Record{}
	for _, x := range rows {
		ts, err := time.Parse(TimestampLayout, x.Timestamp)
		if err != nil {
			t.Fatalf("parse timestamp %q: %v", x.Timestamp, err)
		}
		records = append(records, &model.Record{
			ID: x.ID, Name: x.Name, Rights: x.Rights, Status: x.Status, Remarks: x.Remarks, Timestamp: ts.UTC(),
		})
	}
	return records
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got := parseCSV(t, &buf)
	if !reflect.DeepEqual(got, sampleRecords()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, sampleRecords())
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got := parseJSON(t, &buf)
	if !reflect.DeepEqual(got, sampleRecords()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, sampleRecords())
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got := buf.String(); got != "id,name,rights,status,remarks,timestamp\n" {
		t.Fatalf("empty csv = %q", got)
	}
}

func TestWriteCSV_Quoting(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()[:1]); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "3,\"Carol, Jr.\",Staff,On Hold,\"line one\nline \"\"two\"\"\",2024-03-01T11:30:00Z\n"
	if !strings.HasSuffix(buf.String(), want) {
		t.Fatalf("csv body = %q, want suffix %q", buf.String(), want)
	}
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if got := buf.String(); got != "[]\n" {
		t.Fatalf("empty json = %q", got)
	}
}

func TestWriteJSON_LayoutAndKeyOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRecords()[2:]); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	want := `[
    {
        "id": 1,
        "name": "Zoë <admin>",
        "rights": "Admin",
        "status": "Active",
        "remarks": "a & b",
        "timestamp": "2024-03-01T09:30:00Z"
    }
]
`
	if got := buf.String(); got != want {
		t.Fatalf("json =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteCSV_NormalizesTimestampToUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	records := []*model.Record{{ID: 1, Name: "A", Rights: "User", Status: "Active", Timestamp: fixedTime.In(est)}}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.Contains(buf.String(), "2024-03-01T09:30:00Z") {
		t.Fatalf("csv = %q, want UTC timestamp", buf.String())
	}
}
