// Package sqlite serves the transactions table from a local SQLite file.
// It is used for development and for tests that run the real SQL.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/dvloznov/senate-trades/internal/query"
	"github.com/dvloznov/senate-trades/internal/store"
)

// Config locates the database file and the table to read.
type Config struct {
	Path  string
	Table string
}

// Store is a store.Store backed by database/sql and the modernc driver.
type Store struct {
	db      *sql.DB
	dialect query.Dialect
	log     zerolog.Logger
}

// Open opens (or creates) the SQLite database at cfg.Path.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*Store, error) {
	dialect, err := query.NewDialect(query.DriverSQLite, cfg.Table)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets readers proceed while the loader writes.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	log.Info().Str("path", cfg.Path).Str("table", cfg.Table).Msg("SQLite store opened")
	return &Store{db: db, dialect: dialect, log: log}, nil
}

// DB exposes the underlying handle for migrations and fixtures.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Dialect() query.Dialect {
	return s.dialect
}

// Acquire reserves a dedicated connection from the pool.
func (s *Store) Acquire(ctx context.Context) (store.Conn, error) {
	c, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("Acquire: %w", err)
	}
	return &conn{c: c, log: s.log}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type conn struct {
	c   *sql.Conn
	log zerolog.Logger
}

func (c *conn) Query(ctx context.Context, stmt query.Statement, scan func(store.Row) error) error {
	rows, err := c.c.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return fmt.Errorf("Query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("Query: iterating rows: %w", err)
	}
	return nil
}

func (c *conn) Release() {
	if err := c.c.Close(); err != nil {
		c.log.Warn().Err(err).Msg("Failed to release SQLite connection")
	}
}
