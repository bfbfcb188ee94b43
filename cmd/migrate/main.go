package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/dvloznov/senate-trades/internal/config"
	bqstore "github.com/dvloznov/senate-trades/internal/infra/bigquery"
	"github.com/dvloznov/senate-trades/internal/infra/postgres"
	"github.com/dvloznov/senate-trades/internal/infra/sqlite"
	"github.com/dvloznov/senate-trades/internal/logger"
	"github.com/dvloznov/senate-trades/internal/query"
	"github.com/dvloznov/senate-trades/internal/schema"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file (optional)")
	appliedBy  = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
	status     = flag.Bool("status", false, "List migrations and whether they are applied, then exit")
)

func main() {
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *status {
		err = printStatus(ctx, os.Stdout, cfg, log)
	} else {
		_, err = migrate(ctx, cfg, *appliedBy, log)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

// migrate applies every pending migration for the configured driver.
func migrate(ctx context.Context, cfg *config.Config, appliedBy string, log zerolog.Logger) (int, error) {
	log = logger.WithFields(log, map[string]any{
		"driver": cfg.Store.Driver,
		"table":  cfg.Store.Table,
	})

	exec, migrations, closeFn, err := prepare(ctx, cfg, log)
	if err != nil {
		return 0, err
	}
	defer closeFn()

	log.Info().Int("migrations", len(migrations)).Msg("Starting migration")

	return schema.NewMigrator(exec, appliedBy, log).Up(ctx, migrations)
}

// printStatus writes one line per embedded migration.
func printStatus(ctx context.Context, w io.Writer, cfg *config.Config, log zerolog.Logger) error {
	exec, migrations, closeFn, err := prepare(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := exec.EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}
	applied, err := exec.Applied(ctx)
	if err != nil {
		return fmt.Errorf("get applied migrations: %w", err)
	}
	byVersion := make(map[int]schema.AppliedMigration, len(applied))
	for _, am := range applied {
		byVersion[am.Version] = am
	}

	for _, m := range migrations {
		state := "pending"
		if am, ok := byVersion[m.Version]; ok {
			state = "applied"
			if am.Checksum != "" && am.Checksum != m.Checksum {
				state = "changed"
			}
		}
		fmt.Fprintf(w, "  [%-7s] %04d_%s\n", state, m.Version, m.Name)
	}
	return nil
}

// prepare opens the backend named by cfg.Store.Driver and loads its
// migrations. The returned func closes the backend.
func prepare(ctx context.Context, cfg *config.Config, log zerolog.Logger) (schema.Executor, []schema.Migration, func(), error) {
	d, err := query.NewDialect(cfg.Store.Driver, cfg.Store.Table)
	if err != nil {
		return nil, nil, nil, err
	}
	migrations, err := schema.Load(d)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load migrations: %w", err)
	}

	switch cfg.Store.Driver {
	case query.DriverPostgres:
		db, err := sql.Open("pgx", postgres.BuildConnString(cfg.Store.Postgres))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return schema.NewSQLExecutor(db, d), migrations, func() { db.Close() }, nil

	case query.DriverSQLite:
		st, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.Store.SQLite.Path, Table: cfg.Store.Table}, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return schema.NewSQLExecutor(st.DB(), d), migrations, func() { st.Close() }, nil

	case query.DriverBigQuery:
		st, err := bqstore.NewStore(ctx, cfg.Store.BigQuery, cfg.Store.Table, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return schema.NewBigQueryExecutor(st.Client(), cfg.Store.Table), migrations, func() { st.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
