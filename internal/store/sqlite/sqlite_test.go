package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/records/internal/model"
	"github.com/alfredjeanlab/records/internal/store"
)

var fixedTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "database.db"), WithClock(func() time.Time { return fixedTime }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func create(t *testing.T, s *Store, name, rights, status, remarks string) *model.Record {
	t.Helper()
	r := &model.Record{Name: name, Rights: rights, Status: status, Remarks: remarks}
	require.NoError(t, s.CreateRecord(context.Background(), r))
	return r
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := create(t, s, "John Doe", "Admin", "Active", "New admin")
	require.Equal(t, int64(1), r.ID)
	require.True(t, r.Timestamp.Equal(fixedTime))

	got, err := s.GetRecord(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, "John Doe", got.Name)
	require.Equal(t, "Admin", got.Rights)
	require.Equal(t, "Active", got.Status)
	require.Equal(t, "New admin", got.Remarks)
	require.True(t, got.Timestamp.Equal(fixedTime), "timestamp %v", got.Timestamp)
	require.Equal(t, time.UTC, got.Timestamp.Location())
}

func TestCreate_IDsIncrease(t *testing.T) {
	s := newTestStore(t)

	a := create(t, s, "A", "User", "Active", "")
	b := create(t, s, "B", "User", "Active", "")
	require.Greater(t, b.ID, a.ID)
}

func TestIDsNotReusedAfterDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := create(t, s, "A", "User", "Active", "")
	b := create(t, s, "B", "User", "Active", "")
	require.NoError(t, s.DeleteRecord(ctx, b.ID))

	c := create(t, s, "C", "User", "Active", "")
	require.Greater(t, c.ID, b.ID)
	require.NotEqual(t, a.ID, c.ID)
}

func TestEmptyRemarksReadBackEmpty(t *testing.T) {
	s := newTestStore(t)

	r := create(t, s, "Jane", "User", "Inactive", "")
	got, err := s.GetRecord(context.Background(), r.ID)
	require.NoError(t, err)
	require.Equal(t, "", got.Remarks)
}

func TestListRecords_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.ListRecords(ctx)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	create(t, s, "First", "User", "Active", "")
	create(t, s, "Second", "User", "Active", "")
	create(t, s, "Third", "User", "Active", "")

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "Third", records[0].Name)
	require.Equal(t, "First", records[2].Name)
}

func TestUpdateRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := create(t, s, "John Doe", "Admin", "Active", "note")

	upd := &model.Record{ID: r.ID, Name: "John Smith", Rights: "Admin", Status: "Inactive", Timestamp: time.Now()}
	require.NoError(t, s.UpdateRecord(ctx, upd))
	require.Equal(t, "John Smith", upd.Name)
	require.Equal(t, "Inactive", upd.Status)
	require.Equal(t, "", upd.Remarks, "omitted remarks are cleared")
	require.True(t, upd.Timestamp.Equal(fixedTime), "timestamp is never rewritten")

	got, err := s.GetRecord(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, upd, got)
}

func TestUpdateRecord_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateRecord(context.Background(), &model.Record{ID: 99, Name: "X", Rights: "User", Status: "Active"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := create(t, s, "Gone", "User", "Active", "")
	require.NoError(t, s.DeleteRecord(ctx, r.ID))

	_, err := s.GetRecord(ctx, r.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteRecord(ctx, r.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearchRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	create(t, s, "John Doe", "Admin", "Active", "")
	create(t, s, "Alice", "User", "Active", "Reports to JOHN")
	create(t, s, "Bob", "Staff", "On Hold", "50% allocated")
	create(t, s, "Carol_x", "Staff", "Active", "")
	create(t, s, "Émile Zola", "User", "Active", "")
	create(t, s, "ÖSTERREICH", "Staff", "Inactive", "Grüße aus Wien")

	for _, tc := range []struct {
		query string
		want  []string
	}{
		{"john", []string{"Alice", "John Doe"}},
		{"JOHN", []string{"Alice", "John Doe"}},
		{"", []string{"ÖSTERREICH", "Émile Zola", "Carol_x", "Bob", "Alice", "John Doe"}},
		{"Émile", []string{"Émile Zola"}},
		{"émile", []string{"Émile Zola"}},
		{"ÉMILE ZOLA", []string{"Émile Zola"}},
		{"ÖSTERREICH", []string{"ÖSTERREICH"}},
		{"österreich", []string{"ÖSTERREICH"}},
		{"GRÜSSE", []string{}},
		{"GRÜẞE", []string{"ÖSTERREICH"}},
		{"zola", []string{"Émile Zola"}},
		{"50%", []string{"Bob"}},
		{"%", []string{"Bob"}},
		{"_", []string{"Carol_x"}},
		{"zzz", []string{}},
	} {
		t.Run(tc.query, func(t *testing.T) {
			records, err := s.SearchRecords(ctx, tc.query)
			require.NoError(t, err)
			names := make([]string, 0, len(records))
			for _, r := range records {
				names = append(names, r.Name)
			}
			require.Equal(t, tc.want, names)
		})
	}
}

func TestOpen_ExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// A database created without the schema bookkeeping table.
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		rights TEXT NOT NULL,
		status TEXT NOT NULL,
		remarks TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO records (name, rights, status, remarks) VALUES ('Legacy', 'User', 'Active', NULL)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	records, err := s.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Legacy", records[0].Name)
	require.Equal(t, "", records[0].Remarks)
	require.False(t, records[0].Timestamp.IsZero())
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestFileDir(t *testing.T) {
	require.Equal(t, "", fileDir(":memory:"))
	require.Equal(t, "", fileDir("file:test.db?mode=memory"))
	require.Equal(t, "", fileDir("records.db"))
	require.Equal(t, "db", fileDir("db/database.db"))
}

func TestRecordLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := create(t, s, "John Doe", "Admin", "Active", "New administrator")
	require.Equal(t, int64(1), r.ID)
	require.True(t, r.Timestamp.Equal(fixedTime))

	found, err := s.SearchRecords(ctx, "john")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, r.ID, found[0].ID)

	update := &model.Record{ID: r.ID}
	update.Apply(model.RecordInput{Name: "John Doe", Rights: "Admin", Status: "Inactive", Remarks: "New administrator"})
	require.NoError(t, s.UpdateRecord(ctx, update))

	all, err := s.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, r.ID, all[0].ID)
	require.Equal(t, "Inactive", all[0].Status)
	require.True(t, all[0].Timestamp.Equal(r.Timestamp), "timestamp changed to %v", all[0].Timestamp)

	require.NoError(t, s.DeleteRecord(ctx, r.ID))
	all, err = s.ListRecords(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	require.ErrorIs(t, s.DeleteRecord(ctx, r.ID), store.ErrNotFound)
	require.ErrorIs(t, s.UpdateRecord(ctx, update), store.ErrNotFound)
}

func TestUnicodeLower(t *testing.T) {
	for _, tc := range []struct {
		in   driver.Value
		want driver.Value
	}{
		{"ÉMILE", "émile"},
		{[]byte("ÖSTERREICH"), "österreich"},
		{nil, nil},
		{int64(7), int64(7)},
	} {
		got, err := unicodeLower(nil, []driver.Value{tc.in})
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
}
