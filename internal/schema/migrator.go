package schema

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Executor applies migrations to one backend and tracks what has run.
type Executor interface {
	// EnsureTable creates the schema_migrations table if it doesn't exist.
	EnsureTable(ctx context.Context) error
	// Applied lists the migrations already recorded.
	Applied(ctx context.Context) ([]AppliedMigration, error)
	// Apply executes m and records it.
	Apply(ctx context.Context, m Migration, appliedBy string) error
}

// ChecksumMismatchError reports an applied migration whose file has changed.
type ChecksumMismatchError struct {
	Version  int
	Name     string
	Applied  string
	Embedded string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("migration %04d_%s changed after it was applied (applied %s, now %s)",
		e.Version, e.Name, short(e.Applied), short(e.Embedded))
}

func short(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

// Migrator applies pending migrations in version order.
type Migrator struct {
	exec      Executor
	appliedBy string
	log       zerolog.Logger
}

// NewMigrator creates a Migrator that records appliedBy on every migration.
func NewMigrator(exec Executor, appliedBy string, log zerolog.Logger) *Migrator {
	return &Migrator{exec: exec, appliedBy: appliedBy, log: log}
}

// Up applies every migration not yet recorded and returns how many ran.
// It stops at the first failure.
func (m *Migrator) Up(ctx context.Context, migrations []Migration) (int, error) {
	if err := m.exec.EnsureTable(ctx); err != nil {
		return 0, fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	applied, err := m.exec.Applied(ctx)
	if err != nil {
		return 0, fmt.Errorf("get applied migrations: %w", err)
	}
	m.log.Info().Int("found", len(migrations)).Int("applied", len(applied)).Msg("Loaded migrations")

	appliedVersions := make(map[int]AppliedMigration, len(applied))
	for _, am := range applied {
		appliedVersions[am.Version] = am
	}

	count := 0
	for _, mig := range migrations {
		log := m.log.With().Int("version", mig.Version).Str("name", mig.Name).Logger()

		if am, ok := appliedVersions[mig.Version]; ok {
			if am.Checksum != "" && am.Checksum != mig.Checksum {
				return count, &ChecksumMismatchError{
					Version: mig.Version, Name: mig.Name,
					Applied: am.Checksum, Embedded: mig.Checksum,
				}
			}
			log.Debug().Msg("Migration already applied")
			continue
		}

		log.Info().Msg("Applying migration")
		if err := m.exec.Apply(ctx, mig, m.appliedBy); err != nil {
			return count, fmt.Errorf("apply migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		count++
	}

	if count == 0 {
		m.log.Info().Msg("No new migrations to apply")
	} else {
		m.log.Info().Int("count", count).Msg("Applied migrations")
	}
	return count, nil
}
