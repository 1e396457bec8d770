// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/records/internal/model"
	"github.com/alfredjeanlab/records/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and ensures the records schema exists.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newWithDB(db), nil
}

func newWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: defaultNow}
}

// defaultNow is the creation-time clock: UTC at second precision, matching
// what survives a CSV round trip.
func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) CreateRecord(ctx context.Context, r *model.Record) error {
	r.Timestamp = s.now()
	return queryCreateRecord(ctx, s.db, r)
}

func (s *PostgresStore) GetRecord(ctx context.Context, id int64) (*model.Record, error) {
	return queryGetRecord(ctx, s.db, id)
}

func (s *PostgresStore) ListRecords(ctx context.Context) ([]*model.Record, error) {
	return queryListRecords(ctx, s.db)
}

// UpdateRecord writes the mutable fields and reloads r inside one
// transaction, so the returned record is exactly what was committed.
func (s *PostgresStore) UpdateRecord(ctx context.Context, r *model.Record) error {
	return s.inTransaction(ctx, func(tx executor) error {
		if err := queryUpdateRecord(ctx, tx, r); err != nil {
			return err
		}
		stored, err := queryGetRecord(ctx, tx, r.ID)
		if err != nil {
			return err
		}
		*r = *stored
		return nil
	})
}

func (s *PostgresStore) DeleteRecord(ctx context.Context, id int64) error {
	return queryDeleteRecord(ctx, s.db, id)
}

func (s *PostgresStore) SearchRecords(ctx context.Context, query string) ([]*model.Record, error) {
	return querySearchRecords(ctx, s.db, query)
}

// inTransaction begins a database transaction, calls fn with it, and
// commits on success or rolls back on error.
func (s *PostgresStore) inTransaction(ctx context.Context, fn func(tx executor) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
