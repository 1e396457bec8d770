// Package sqlite implements the store.Store interface on a single SQLite
// database file using bun.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	sqlitedriver "modernc.org/sqlite"

	"github.com/alfredjeanlab/records/internal/model"
	"github.com/alfredjeanlab/records/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	pragmaJournalModeWAL = `PRAGMA journal_mode=WAL`
	pragmaForeignKeysOn  = `PRAGMA foreign_keys=ON`
	pragmaBusyTimeout    = `PRAGMA busy_timeout=5000`
)

// lowerFunc is a Unicode-aware replacement for SQLite's ASCII-only LOWER.
const lowerFunc = "unicode_lower"

func init() {
	sqlitedriver.MustRegisterDeterministicScalarFunction(lowerFunc, 1, unicodeLower)
}

func unicodeLower(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Store implements store.Store backed by SQLite.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the records table exists. Existing databases with a compatible records
// table are used as-is.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("open sqlite: empty path")
	}
	if dir := fileDir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("open sqlite: create parent dir: %w", err)
		}
	}

	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps per-connection pragmas in force and serializes
	// writers, which SQLite requires anyway.
	sqldb.SetMaxOpenConns(1)

	if err := configureSQLite(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	if err := runMigrations(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{
		db: bun.NewDB(sqldb, sqlitedialect.New()),
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Second)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// fileDir returns the directory that must exist for path, or "" for
// in-memory databases and URIs.
func fileDir(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

func configureSQLite(db *sql.DB) error {
	for _, stmt := range []string{pragmaJournalModeWAL, pragmaForeignKeysOn, pragmaBusyTimeout} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("configure sqlite %q: %w", stmt, err)
		}
	}
	return nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) CreateRecord(ctx context.Context, r *model.Record) error {
	r.Timestamp = s.now()
	row := fromDomain(r)
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	r.ID = row.ID
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id int64) (*model.Record, error) {
	return getRecord(ctx, s.db, id)
}

func (s *Store) ListRecords(ctx context.Context) ([]*model.Record, error) {
	var rows []recordRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("id DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return toDomainSlice(rows), nil
}

// UpdateRecord replaces the mutable columns and reloads r in one transaction.
func (s *Store) UpdateRecord(ctx context.Context, r *model.Record) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(fromDomain(r)).
			Column("name", "rights", "status", "remarks").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update record %d: %w", r.ID, err)
		}
		if err := requireAffected(res, r.ID); err != nil {
			return err
		}
		stored, err := getRecord(ctx, tx, r.ID)
		if err != nil {
			return err
		}
		*r = *stored
		return nil
	})
}

func (s *Store) DeleteRecord(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().
		Model((*recordRow)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	return requireAffected(res, id)
}

// SearchRecords matches query against name and remarks. Both sides are
// lowered with the same Unicode case mapping as store.LikePattern.
func (s *Store) SearchRecords(ctx context.Context, query string) ([]*model.Record, error) {
	pattern := store.LikePattern(query)
	var rows []recordRow
	err := s.db.NewSelect().
		Model(&rows).
		Where(lowerFunc+`(name) LIKE ? ESCAPE '\'`, pattern).
		WhereOr(lowerFunc+`(COALESCE(remarks, '')) LIKE ? ESCAPE '\'`, pattern).
		OrderExpr("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	return toDomainSlice(rows), nil
}

func getRecord(ctx context.Context, db bun.IDB, id int64) (*model.Record, error) {
	var row recordRow
	err := db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	return row.toDomain(), nil
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	return nil
}
