package schema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dvloznov/senate-trades/internal/query"
)

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    checksum   TEXT,
    applied_by TEXT
)`

// SQLExecutor applies migrations through database/sql. It serves PostgreSQL
// (pgx stdlib driver) and SQLite.
type SQLExecutor struct {
	db      *sql.DB
	dialect query.Dialect
}

// NewSQLExecutor creates an executor using d's placeholders.
func NewSQLExecutor(db *sql.DB, d query.Dialect) *SQLExecutor {
	return &SQLExecutor{db: db, dialect: d}
}

func (e *SQLExecutor) EnsureTable(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("EnsureTable: %w", err)
	}
	return nil
}

func (e *SQLExecutor) Applied(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT version, name, COALESCE(checksum, ''), COALESCE(applied_by, '') FROM schema_migrations ORDER BY version ASC`)
	if err != nil {
		return nil, fmt.Errorf("Applied: reading applied migrations: %w", err)
	}
	defer rows.Close()

	applied := []AppliedMigration{}
	for rows.Next() {
		var am AppliedMigration
		if err := rows.Scan(&am.Version, &am.Name, &am.Checksum, &am.AppliedBy); err != nil {
			return nil, fmt.Errorf("Applied: scan: %w", err)
		}
		applied = append(applied, am)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Applied: iterating results: %w", err)
	}
	return applied, nil
}

// Apply runs every statement of m and its bookkeeping insert in one
// transaction.
func (e *SQLExecutor) Apply(ctx context.Context, m Migration, appliedBy string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Apply: begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(m.SQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("Apply: executing %s: %w", m.Filename, err)
		}
	}

	p := e.dialect.Placeholder
	record := fmt.Sprintf(
		"INSERT INTO schema_migrations (version, name, checksum, applied_by) VALUES (%s, %s, %s, %s)",
		p(1), p(2), p(3), p(4))
	if _, err := tx.ExecContext(ctx, record, m.Version, m.Name, m.Checksum, appliedBy); err != nil {
		return fmt.Errorf("Apply: recording migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Apply: commit: %w", err)
	}
	return nil
}
