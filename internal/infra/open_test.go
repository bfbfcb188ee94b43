package infra

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dvloznov/senate-trades/internal/config"
	"github.com/dvloznov/senate-trades/internal/query"
)

func TestOpenSQLite(t *testing.T) {
	cfg := config.StoreConfig{
		Driver: query.DriverSQLite,
		Table:  "transactions",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "trades.db")},
	}

	st, err := Open(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	if st.Dialect().Name() != query.DriverSQLite {
		t.Errorf("Dialect = %s, want sqlite", st.Dialect().Name())
	}
	if err := st.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mysql", Table: "transactions"}, zerolog.Nop())
	if err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestOpenRejectsUnsafeTable(t *testing.T) {
	cfg := config.StoreConfig{
		Driver: query.DriverSQLite,
		Table:  "transactions; DROP TABLE transactions",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "trades.db")},
	}
	if _, err := Open(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("expected error for unsafe table name")
	}
}
