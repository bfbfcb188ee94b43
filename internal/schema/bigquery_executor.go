package schema

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// BigQueryExecutor applies migrations with BigQuery jobs. Each migration runs
// as a single script.
type BigQueryExecutor struct {
	client *bigquery.Client
	table  string
}

// NewBigQueryExecutor tracks migrations in schema_migrations next to table
// (project.dataset.transactions yields project.dataset.schema_migrations).
func NewBigQueryExecutor(client *bigquery.Client, table string) *BigQueryExecutor {
	return &BigQueryExecutor{client: client, table: MigrationsTable(table)}
}

// MigrationsTable returns the backtick-quoted schema_migrations reference in
// the same dataset as table.
func MigrationsTable(table string) string {
	table = strings.Trim(table, "`")
	name := "schema_migrations"
	if i := strings.LastIndex(table, "."); i >= 0 {
		name = table[:i+1] + name
	}
	return "`" + name + "`"
}

func (e *BigQueryExecutor) EnsureTable(ctx context.Context) error {
	sql := `CREATE TABLE IF NOT EXISTS ` + e.table + ` (
			version       INT64 NOT NULL,
			name          STRING NOT NULL,
			applied_at    TIMESTAMP NOT NULL,
			checksum      STRING,
			applied_by    STRING
		)`
	if err := e.run(ctx, e.client.Query(sql)); err != nil {
		return fmt.Errorf("EnsureTable: %w", err)
	}
	return nil
}

func (e *BigQueryExecutor) Applied(ctx context.Context) ([]AppliedMigration, error) {
	q := e.client.Query(`
		SELECT version, name, checksum, applied_by
		FROM ` + e.table + `
		ORDER BY version ASC
	`)
	it, err := q.Read(ctx)
	if err != nil {
		// If table doesn't exist yet, return empty list
		if strings.Contains(err.Error(), "Not found") {
			return []AppliedMigration{}, nil
		}
		return nil, fmt.Errorf("Applied: reading applied migrations: %w", err)
	}

	applied := []AppliedMigration{}
	for {
		var row struct {
			Version   int64               `bigquery:"version"`
			Name      string              `bigquery:"name"`
			Checksum  bigquery.NullString `bigquery:"checksum"`
			AppliedBy bigquery.NullString `bigquery:"applied_by"`
		}

		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Applied: iterating results: %w", err)
		}

		am := AppliedMigration{Version: int(row.Version), Name: row.Name}
		if row.Checksum.Valid {
			am.Checksum = row.Checksum.StringVal
		}
		if row.AppliedBy.Valid {
			am.AppliedBy = row.AppliedBy.StringVal
		}
		applied = append(applied, am)
	}
	return applied, nil
}

func (e *BigQueryExecutor) Apply(ctx context.Context, m Migration, appliedBy string) error {
	if err := e.run(ctx, e.client.Query(m.SQL)); err != nil {
		return fmt.Errorf("Apply: executing %s: %w", m.Filename, err)
	}

	q := e.client.Query(`
		INSERT INTO ` + e.table + `
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: appliedBy},
	}
	if err := e.run(ctx, q); err != nil {
		return fmt.Errorf("Apply: recording migration: %w", err)
	}
	return nil
}

// run starts the job and waits for it to finish.
func (e *BigQueryExecutor) run(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
