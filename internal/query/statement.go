package query

import (
	"strings"

	"cloud.google.com/go/civil"
)

// Statement is parameterized query text plus its bind values, in the order
// their placeholders appear.
type Statement struct {
	SQL  string
	Args []any
}

// PlaceholderTickers are ticker values excluded from ticker enumeration.
var PlaceholderTickers = []string{"--", "UNKNOWN", ""}

type builder struct {
	d    Dialect
	sb   strings.Builder
	args []any
}

func newBuilder(d Dialect) *builder {
	return &builder{d: d}
}

func (b *builder) write(parts ...string) *builder {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
	return b
}

// bind records v and returns its placeholder.
func (b *builder) bind(v any) string {
	if d, ok := v.(civil.Date); ok {
		v = b.d.BindDate(d)
	}
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

func (b *builder) where(preds []Predicate) *builder {
	for _, p := range preds {
		b.write(" AND ", p.Column, " ", p.Op, " ", b.bind(p.Value))
	}
	return b
}

func (b *builder) statement() Statement {
	return Statement{SQL: b.sb.String(), Args: b.args}
}

// tieBreak is appended after the caller-chosen sort column. It covers every
// returned column, so rows that still compare equal are indistinguishable.
var tieBreak = []struct {
	column string
	dir    string
}{
	{colDate, "DESC"},
	{colParty, "ASC"},
	{colTicker, "ASC"},
	{colSide, "ASC"},
	{colEstimate, "ASC"},
}

func orderBy(sort SortColumn, order SortOrder) string {
	primary := sortColumns[sort]
	var sb strings.Builder
	sb.WriteString(primary)
	sb.WriteString(" ")
	sb.WriteString(sortOrders[order])
	for _, tb := range tieBreak {
		if tb.column == primary {
			continue
		}
		sb.WriteString(", ")
		sb.WriteString(tb.column)
		sb.WriteString(" ")
		sb.WriteString(tb.dir)
	}
	return sb.String()
}

// ListTransactions builds a filtered, sorted, paginated row fetch.
// Columns: party, ticker, side, trade date text, estimate (nullable double).
func ListTransactions(d Dialect, p ListParams) Statement {
	b := newBuilder(d)
	b.write("SELECT ", colParty, ", ", colTicker, ", ", colSide, ", ",
		d.FormatDate(colDate), ", ", d.Float(colEstimate),
		" FROM ", d.Table(), " WHERE 1=1")
	b.where(p.Filter.Predicates())
	b.write(" ORDER BY ", orderBy(p.Sort, p.Order))
	b.write(" LIMIT ", b.bind(p.Limit))
	b.write(" OFFSET ", b.bind(p.Offset))
	return b.statement()
}

// CountTransactions builds a scalar count over the filtered rows.
func CountTransactions(d Dialect, f Filter) Statement {
	b := newBuilder(d)
	b.write("SELECT COUNT(*) FROM ", d.Table(), " WHERE 1=1")
	b.where(f.Predicates())
	return b.statement()
}

// DistinctParties builds an ascending listing of distinct party names.
func DistinctParties(d Dialect, limit int) Statement {
	b := newBuilder(d)
	b.write("SELECT DISTINCT ", colParty, " FROM ", d.Table(),
		" ORDER BY ", colParty, " ASC LIMIT ", b.bind(limit))
	return b.statement()
}

// DistinctTickers builds an ascending listing of distinct tickers, skipping
// placeholder values.
func DistinctTickers(d Dialect, limit int) Statement {
	b := newBuilder(d)
	b.write("SELECT DISTINCT ", colTicker, " FROM ", d.Table(),
		" WHERE ", colTicker, " IS NOT NULL AND ", colTicker, " NOT IN (")
	for i, t := range PlaceholderTickers {
		if i > 0 {
			b.write(", ")
		}
		b.write(b.bind(t))
	}
	b.write(") ORDER BY ", colTicker, " ASC LIMIT ", b.bind(limit))
	return b.statement()
}

// TopActivity builds the top-N-per-bucket ranking.
// Columns: bucket start text, ticker, distinct parties, trades, total estimate.
func TopActivity(d Dialect, p TopParams) Statement {
	b := newBuilder(d)
	b.write("WITH bucketed AS (SELECT ",
		d.TruncDate(p.Period, colDate), " AS bucket_start, ",
		colTicker, " AS ticker, ",
		"COUNT(DISTINCT ", colParty, ") AS n_senators, ",
		"COUNT(*) AS n_trades, ",
		"COALESCE(SUM(", colEstimate, "), 0) AS total_estimate",
		" FROM ", d.Table(),
		" WHERE ", colSide, " = ", b.bind(string(p.Side)))
	if p.Start != nil {
		b.write(" AND ", colDate, " >= ", b.bind(*p.Start))
	}
	if p.End != nil {
		b.write(" AND ", colDate, " <= ", b.bind(*p.End))
	}
	b.write(" GROUP BY 1, 2), ",
		"ranked AS (SELECT bucket_start, ticker, n_senators, n_trades, total_estimate, ",
		"ROW_NUMBER() OVER (PARTITION BY bucket_start ",
		"ORDER BY n_senators DESC, n_trades DESC, total_estimate DESC, ticker ASC) AS rnk",
		" FROM bucketed) ",
		"SELECT ", d.FormatDate("bucket_start"), " AS bucket_start, ticker, n_senators, n_trades, ",
		d.Float("total_estimate"), " AS total_estimate",
		" FROM ranked WHERE rnk <= ", b.bind(p.TopN),
		" ORDER BY bucket_start DESC, n_senators DESC, ticker ASC")
	return b.statement()
}

// MonthlySeries builds the per-month distinct BUY/SELL party counts for one
// ticker. Columns: month start text, buy parties, sell parties.
func MonthlySeries(d Dialect, p TimeseriesParams) Statement {
	b := newBuilder(d)
	b.write("SELECT ", d.FormatDate("month_start"), " AS month_start, buy_senators, sell_senators FROM (SELECT ",
		d.TruncDate(PeriodMonth, colDate), " AS month_start, ",
		"COUNT(DISTINCT CASE WHEN ", colSide, " = ", b.bind(string(SideBuy)), " THEN ", colParty, " END) AS buy_senators, ",
		"COUNT(DISTINCT CASE WHEN ", colSide, " = ", b.bind(string(SideSell)), " THEN ", colParty, " END) AS sell_senators",
		" FROM ", d.Table(),
		" WHERE ", colTicker, " = ", b.bind(p.Ticker),
		" GROUP BY 1) monthly ORDER BY month_start ASC")
	return b.statement()
}
