// Package infra opens the transaction store selected by configuration.
package infra

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/senate-trades/internal/config"
	"github.com/dvloznov/senate-trades/internal/infra/bigquery"
	"github.com/dvloznov/senate-trades/internal/infra/postgres"
	"github.com/dvloznov/senate-trades/internal/infra/sqlite"
	"github.com/dvloznov/senate-trades/internal/query"
	"github.com/dvloznov/senate-trades/internal/store"
)

// Open connects to the store named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, log zerolog.Logger) (store.Store, error) {
	log = log.With().Str("driver", cfg.Driver).Logger()

	var (
		st  store.Store
		err error
	)
	switch cfg.Driver {
	case query.DriverPostgres:
		st, err = postgres.Connect(ctx, cfg.Postgres, cfg.Table, log)
	case query.DriverBigQuery:
		st, err = bigquery.NewStore(ctx, cfg.BigQuery, cfg.Table, log)
	case query.DriverSQLite:
		st, err = sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path, Table: cfg.Table}, log)
	default:
		return nil, fmt.Errorf("Open: unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	return st, nil
}
