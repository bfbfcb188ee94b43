// Package bigquery serves the transactions table from BigQuery.
//
// BigQuery has no connections to pool; Acquire instead reserves one of a
// fixed number of concurrent query slots on a shared client.
package bigquery

import (
	"context"
	"fmt"
	"strconv"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/senate-trades/internal/config"
	"github.com/dvloznov/senate-trades/internal/query"
	"github.com/dvloznov/senate-trades/internal/store"
)

// Store is a store.Store backed by a shared BigQuery client.
type Store struct {
	client   *bigquery.Client
	dialect  query.Dialect
	location string
	slots    *semaphore.Weighted
	log      zerolog.Logger
}

// NewStore creates a BigQuery client for cfg.ProjectID.
func NewStore(ctx context.Context, cfg config.BigQueryConfig, table string, log zerolog.Logger) (*Store, error) {
	dialect, err := query.NewDialect(query.DriverBigQuery, table)
	if err != nil {
		return nil, err
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: creating client: %w", err)
	}

	jobs := cfg.MaxConcurrentJobs
	if jobs <= 0 {
		jobs = 1
	}

	log.Info().Str("project", cfg.ProjectID).Str("table", table).Int("max_jobs", jobs).Msg("BigQuery store ready")
	return &Store{
		client:   client,
		dialect:  dialect,
		location: cfg.Location,
		slots:    semaphore.NewWeighted(int64(jobs)),
		log:      log,
	}, nil
}

// Client exposes the underlying client for migrations.
func (s *Store) Client() *bigquery.Client {
	return s.client
}

func (s *Store) Dialect() query.Dialect {
	return s.dialect
}

// Acquire waits for a free query slot.
func (s *Store) Acquire(ctx context.Context) (store.Conn, error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("Acquire: %w", err)
	}
	return &conn{s: s}, nil
}

// Ping runs a trivial query.
func (s *Store) Ping(ctx context.Context) error {
	c, err := s.Acquire(ctx)
	if err != nil {
		return err
	}
	defer c.Release()
	return c.Query(ctx, query.Statement{SQL: "SELECT 1"}, func(store.Row) error { return nil })
}

// Close closes the BigQuery client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

type conn struct {
	s *Store
}

func (c *conn) Query(ctx context.Context, stmt query.Statement, scan func(store.Row) error) error {
	q := c.s.client.Query(stmt.SQL)
	q.Parameters = Parameters(stmt.Args)
	if c.s.location != "" {
		q.Location = c.s.location
	}

	it, err := q.Read(ctx)
	if err != nil {
		return fmt.Errorf("Query: query read: %w", err)
	}

	for {
		var vals []bigquery.Value
		err := it.Next(&vals)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("Query: iter next: %w", err)
		}
		if err := scan(row(vals)); err != nil {
			return err
		}
	}
	return nil
}

func (c *conn) Release() {
	c.s.slots.Release(1)
}

// Parameters names positional arguments p1..pn to match the dialect's
// @pN placeholders.
func Parameters(args []any) []bigquery.QueryParameter {
	params := make([]bigquery.QueryParameter, len(args))
	for i, a := range args {
		params[i] = bigquery.QueryParameter{Name: "p" + strconv.Itoa(i+1), Value: a}
	}
	return params
}
