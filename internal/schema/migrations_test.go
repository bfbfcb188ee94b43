package schema

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/dvloznov/senate-trades/internal/query"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_create_transactions.sql", true, 1, "create_transactions"},
		{"0012_add_indexes.sql", true, 12, "add_indexes"},
		{"001_invalid.sql", false, 0, ""},        // wrong number format
		{"0001_test", false, 0, ""},              // missing .sql
		{"0001.sql", false, 0, ""},               // missing name
		{"invalid_0001_test.sql", false, 0, ""}, // wrong order
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := ParseFilename(tt.filename)
			if ok != tt.valid {
				t.Fatalf("ParseFilename(%q) ok = %v, want %v", tt.filename, ok, tt.valid)
			}
			if version != tt.version || name != tt.name {
				t.Errorf("ParseFilename(%q) = %d, %q; want %d, %q", tt.filename, version, name, tt.version, tt.name)
			}
		})
	}
}

func TestLoadSortsAndResolvesTable(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_second.sql": {Data: []byte("CREATE INDEX x ON {{TABLE}} (a);")},
		"m/0001_first.sql":  {Data: []byte("CREATE TABLE {{TABLE}} (a INT);")},
		"m/README.md":       {Data: []byte("ignored")},
	}

	migrations, err := load(fsys, "m", "trades")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("len = %d, want 2", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("versions = %d, %d; want 1, 2", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].SQL != "CREATE TABLE trades (a INT);" {
		t.Errorf("SQL = %q", migrations[0].SQL)
	}
}

func TestLoadRejectsDuplicateVersions(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("SELECT 1;")},
		"m/0001_b.sql": {Data: []byte("SELECT 2;")},
	}
	if _, err := load(fsys, "m", "t"); err == nil {
		t.Error("expected duplicate version error")
	}
}

func TestChecksumIgnoresTable(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_create.sql": {Data: []byte("CREATE TABLE {{TABLE}} (id INT);")},
		"n/0001_create.sql": {Data: []byte("CREATE TABLE {{TABLE}} (id BIGINT);")},
	}

	a, _ := load(fsys, "m", "one")
	b, _ := load(fsys, "m", "two")
	c, _ := load(fsys, "n", "one")

	if a[0].Checksum != b[0].Checksum {
		t.Error("same file should checksum identically regardless of table")
	}
	if a[0].Checksum == c[0].Checksum {
		t.Error("different content should not share a checksum")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, driver := range []string{query.DriverPostgres, query.DriverSQLite, query.DriverBigQuery} {
		t.Run(driver, func(t *testing.T) {
			table := "transactions"
			if driver == query.DriverBigQuery {
				table = "proj.senate.transactions"
			}
			d, err := query.NewDialect(driver, table)
			if err != nil {
				t.Fatalf("NewDialect failed: %v", err)
			}

			migrations, err := Load(d)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(migrations) == 0 || migrations[0].Version != 1 {
				t.Fatalf("expected migrations starting at version 1, got %+v", migrations)
			}
			for _, m := range migrations {
				if strings.Contains(m.SQL, tablePlaceholder) {
					t.Errorf("%s: unresolved table placeholder", m.Filename)
				}
				if !strings.Contains(m.SQL, d.Table()) {
					t.Errorf("%s: table %s not referenced", m.Filename, d.Table())
				}
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `-- header; with a semicolon
CREATE TABLE a (id INT);

CREATE INDEX a_idx ON a (id);
`
	stmts := splitStatements(sql)
	if len(stmts) != 2 {
		t.Fatalf("len = %d, want 2: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (id INT)" || stmts[1] != "CREATE INDEX a_idx ON a (id)" {
		t.Errorf("stmts = %q", stmts)
	}
}

func TestMigrationsTable(t *testing.T) {
	tests := map[string]string{
		"proj.senate.transactions":   "`proj.senate.schema_migrations`",
		"`proj.senate.transactions`": "`proj.senate.schema_migrations`",
		"senate.transactions":        "`senate.schema_migrations`",
		"transactions":               "`schema_migrations`",
	}
	for in, want := range tests {
		if got := MigrationsTable(in); got != want {
			t.Errorf("MigrationsTable(%q) = %s, want %s", in, got, want)
		}
	}
}
