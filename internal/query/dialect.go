package query

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverBigQuery = "bigquery"
	DriverSQLite   = "sqlite"
)

// Dialect supplies the trusted, store-specific fragments a statement is
// assembled from. Every method returns text derived only from closed enums,
// the configured table name, or column constants.
type Dialect interface {
	// Name returns the driver name.
	Name() string
	// Table returns the quoted transactions table reference.
	Table() string
	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder(n int) string
	// TruncDate returns an expression truncating a DATE column to its bucket start.
	TruncDate(p Period, column string) string
	// FormatDate renders a DATE expression as YYYY-MM-DD text.
	FormatDate(expr string) string
	// Float casts a numeric expression to a double.
	Float(expr string) string
	// BindDate converts a calendar date to the driver's bind value.
	BindDate(d civil.Date) any
}

var (
	sqlIdent      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	bigQueryIdent = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+){0,2}$`)
)

// NewDialect returns the dialect for driver, bound to table.
func NewDialect(driver, table string) (Dialect, error) {
	switch driver {
	case DriverPostgres:
		if !sqlIdent.MatchString(table) {
			return nil, fmt.Errorf("NewDialect: invalid table name %q", table)
		}
		return postgresDialect{table: table}, nil
	case DriverSQLite:
		if !sqlIdent.MatchString(table) {
			return nil, fmt.Errorf("NewDialect: invalid table name %q", table)
		}
		return sqliteDialect{table: table}, nil
	case DriverBigQuery:
		if !bigQueryIdent.MatchString(table) {
			return nil, fmt.Errorf("NewDialect: invalid table name %q", table)
		}
		return bigQueryDialect{table: table}, nil
	default:
		return nil, fmt.Errorf("NewDialect: unknown driver %q", driver)
	}
}

// Postgres

type postgresDialect struct{ table string }

var postgresUnits = map[Period]string{
	PeriodWeek:  "'week'",
	PeriodMonth: "'month'",
	PeriodYear:  "'year'",
}

func (postgresDialect) Name() string { return DriverPostgres }

func (d postgresDialect) Table() string { return d.table }

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// date_trunc('week', ...) starts weeks on Monday.
func (postgresDialect) TruncDate(p Period, column string) string {
	return "date_trunc(" + postgresUnits[p] + ", " + column + ")::date"
}

func (postgresDialect) FormatDate(expr string) string {
	return "to_char(" + expr + ", 'YYYY-MM-DD')"
}

func (postgresDialect) Float(expr string) string { return "(" + expr + ")::float8" }

func (postgresDialect) BindDate(d civil.Date) any { return d.In(time.UTC) }

// BigQuery

type bigQueryDialect struct{ table string }

var bigQueryUnits = map[Period]string{
	PeriodWeek:  "ISOWEEK",
	PeriodMonth: "MONTH",
	PeriodYear:  "YEAR",
}

func (bigQueryDialect) Name() string { return DriverBigQuery }

func (d bigQueryDialect) Table() string { return "`" + d.table + "`" }

func (bigQueryDialect) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

func (bigQueryDialect) TruncDate(p Period, column string) string {
	return "DATE_TRUNC(" + column + ", " + bigQueryUnits[p] + ")"
}

func (bigQueryDialect) FormatDate(expr string) string {
	return "FORMAT_DATE('%Y-%m-%d', " + expr + ")"
}

func (bigQueryDialect) Float(expr string) string { return "CAST(" + expr + " AS FLOAT64)" }

func (bigQueryDialect) BindDate(d civil.Date) any { return d }

// SQLite stores tx_date as YYYY-MM-DD text.

type sqliteDialect struct{ table string }

var sqliteModifiers = map[Period]string{
	PeriodWeek:  "'-6 days', 'weekday 1'",
	PeriodMonth: "'start of month'",
	PeriodYear:  "'start of year'",
}

func (sqliteDialect) Name() string { return DriverSQLite }

func (d sqliteDialect) Table() string { return d.table }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) TruncDate(p Period, column string) string {
	return "date(" + column + ", " + sqliteModifiers[p] + ")"
}

func (sqliteDialect) FormatDate(expr string) string { return "date(" + expr + ")" }

func (sqliteDialect) Float(expr string) string { return "CAST(" + expr + " AS REAL)" }

func (sqliteDialect) BindDate(d civil.Date) any { return d.String() }
