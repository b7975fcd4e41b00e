package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migration is one declarative schema step, with per-dialect SQL where the
// dialects disagree (auto-increment keys, mostly). Applied versions are
// recorded in schema_migrations and never re-run.
type migration struct {
	Version  int
	Name     string
	SQLite   string
	Postgres string
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "create tests",
		SQLite: `CREATE TABLE IF NOT EXISTS tests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			questions TEXT NOT NULL,
			question_count INTEGER NOT NULL DEFAULT 0,
			creator_id INTEGER,
			created_at INTEGER NOT NULL
		)`,
		Postgres: `CREATE TABLE IF NOT EXISTS tests (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			questions TEXT NOT NULL,
			question_count INTEGER NOT NULL DEFAULT 0,
			creator_id BIGINT,
			created_at BIGINT NOT NULL
		)`,
	},
	{
		Version: 2,
		Name:    "create submissions",
		SQLite: `CREATE TABLE IF NOT EXISTS submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			test_id INTEGER NOT NULL,
			student_name TEXT NOT NULL,
			student_class TEXT NOT NULL DEFAULT '',
			answers TEXT NOT NULL,
			auto_grade TEXT NOT NULL,
			manual_grade TEXT,
			manual_points TEXT NOT NULL DEFAULT '{}',
			teacher_comment TEXT,
			share_token TEXT NOT NULL UNIQUE,
			submitted_at INTEGER NOT NULL
		)`,
		Postgres: `CREATE TABLE IF NOT EXISTS submissions (
			id BIGSERIAL PRIMARY KEY,
			test_id BIGINT NOT NULL,
			student_name TEXT NOT NULL,
			student_class TEXT NOT NULL DEFAULT '',
			answers TEXT NOT NULL,
			auto_grade TEXT NOT NULL,
			manual_grade TEXT,
			manual_points TEXT NOT NULL DEFAULT '{}',
			teacher_comment TEXT,
			share_token TEXT NOT NULL UNIQUE,
			submitted_at BIGINT NOT NULL
		)`,
	},
	{
		Version:  3,
		Name:     "index submissions by test",
		SQLite:   `CREATE INDEX IF NOT EXISTS idx_submissions_test_id ON submissions (test_id)`,
		Postgres: `CREATE INDEX IF NOT EXISTS idx_submissions_test_id ON submissions (test_id)`,
	},
}

// Migrate applies pending migrations once, in order, at startup.
func Migrate(ctx context.Context, conn *sql.DB, driver Driver) error {
	if _, err := conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at BIGINT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		applied, err := migrationApplied(ctx, conn, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := applyMigration(ctx, conn, driver, m); err != nil {
			return err
		}
	}
	return nil
}

func migrationApplied(ctx context.Context, conn *sql.DB, version int) (bool, error) {
	var count int
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations WHERE version = $1`, version,
	).Scan(&count); err != nil {
		return false, fmt.Errorf("check migration %d: %w", version, err)
	}
	return count > 0, nil
}

func applyMigration(ctx context.Context, conn *sql.DB, driver Driver, m migration) error {
	stmt := m.SQLite
	if driver == DriverPostgres {
		stmt = m.Postgres
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, $3)`,
		m.Version, m.Name, nowUnix(),
	); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.Version, err)
	}
	return nil
}

func nowUnix() int64 {
	return time.Now().Unix()
}
