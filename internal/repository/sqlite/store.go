// Package sqlite provides SQLite-backed repositories for development and tests.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thatlq1812/sitetools/internal/repository"
	"github.com/thatlq1812/sitetools/internal/repository/migrate"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store implements repository.Store on a single SQLite database.
type Store struct {
	sqlDB *sql.DB
}

var _ repository.Store = (*Store)(nil)

// Open opens and migrates a SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// runMigrations applies the embedded schema through the shared migration runner.
func (s *Store) runMigrations() error {
	_, err := migrate.Run(context.Background(), sqlMigrationTarget{db: s.sqlDB}, migrationFS, "migrations")
	return err
}

type sqlMigrationTarget struct {
	db *sql.DB
}

func (t sqlMigrationTarget) EnsureTable(ctx context.Context) error {
	_, err := t.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+migrate.Table+` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`)
	return err
}

func (t sqlMigrationTarget) IsApplied(ctx context.Context, name string) (bool, error) {
	var found int
	err := t.db.QueryRowContext(ctx, `SELECT 1 FROM `+migrate.Table+` WHERE name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (t sqlMigrationTarget) Apply(ctx context.Context, name, upSQL string) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, upSQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+migrate.Table+` (name, applied_at) VALUES (?, ?)`,
		name, timeToUnixMillis(time.Now()),
	); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
