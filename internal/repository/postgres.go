package repository

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thatlq1812/sitetools/internal/repository/migrate"
)

//go:embed migrations/*.sql
var postgresMigrations embed.FS

type postgresStore struct {
	DocumentRepository
	AcceptanceRepository
	SiteRepository

	db *pgxpool.Pool
}

// NewPostgresStore bundles the pgx repositories over one pool
func NewPostgresStore(db *pgxpool.Pool) Store {
	return &postgresStore{
		DocumentRepository:   NewPostgresDocumentRepository(db),
		AcceptanceRepository: NewPostgresAcceptanceRepository(db),
		SiteRepository:       NewPostgresSiteRepository(db),
		db:                   db,
	}
}

// OpenPostgres connects a pool and verifies the connection
func OpenPostgres(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *postgresStore) Close() error {
	s.db.Close()
	return nil
}

// MigratePostgres applies embedded migrations at most once per file and returns
// the names of the files applied by this call.
func MigratePostgres(ctx context.Context, db *pgxpool.Pool) ([]string, error) {
	return migrate.Run(ctx, pgxMigrationTarget{db: db}, postgresMigrations, "migrations")
}

type pgxMigrationTarget struct {
	db *pgxpool.Pool
}

func (t pgxMigrationTarget) EnsureTable(ctx context.Context) error {
	_, err := t.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+migrate.Table+` (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (t pgxMigrationTarget) IsApplied(ctx context.Context, name string) (bool, error) {
	var done bool
	err := t.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM `+migrate.Table+` WHERE name = $1)`, name).Scan(&done)
	return done, err
}

func (t pgxMigrationTarget) Apply(ctx context.Context, name, upSQL string) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, upSQL); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO `+migrate.Table+` (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit(ctx)
}
