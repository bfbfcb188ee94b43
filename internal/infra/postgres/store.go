// Package postgres serves the transactions table from PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dvloznov/senate-trades/internal/config"
	"github.com/dvloznov/senate-trades/internal/query"
	"github.com/dvloznov/senate-trades/internal/store"
)

// Store is a store.Store backed by a pgxpool.Pool.
type Store struct {
	pool    *pgxpool.Pool
	dialect query.Dialect
	log     zerolog.Logger
}

// Connect creates the connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DBConfig, table string, log zerolog.Logger) (*Store, error) {
	dialect, err := query.NewDialect(query.DriverPostgres, table)
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	poolCfg.MinConns = int32(cfg.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("PostgreSQL pool ready")

	return &Store{pool: pool, dialect: dialect, log: log}, nil
}

func (s *Store) Dialect() query.Dialect {
	return s.dialect
}

// Acquire checks a connection out of the pool.
func (s *Store) Acquire(ctx context.Context) (store.Conn, error) {
	c, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("Acquire: %w", err)
	}
	return &conn{c: c}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type conn struct {
	c *pgxpool.Conn
}

func (c *conn) Query(ctx context.Context, stmt query.Statement, scan func(store.Row) error) error {
	rows, err := c.c.Query(ctx, stmt.SQL, stmt.Args...)
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

// Release returns the connection to the pool.
func (c *conn) Release() {
	c.c.Release()
}
