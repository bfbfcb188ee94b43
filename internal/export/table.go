// Package export renders activity reports to CSV, JSON or XLSX and stores
// them locally or in Cloud Storage.
package export

import (
	"strconv"

	"github.com/dvloznov/senate-trades/internal/domain"
)

// Table is a format-independent report: a named sheet with a header row.
// Cells hold string, int64 or float64 values; nil renders as empty.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// TopTable lays out a bucketed activity ranking.
func TopTable(aggs []domain.BucketAggregate) Table {
	t := Table{
		Name:   "top_activity",
		Header: []string{"bucket_start", "ticker", "n_senators", "n_trades", "total_estimate"},
		Rows:   make([][]any, 0, len(aggs)),
	}
	for _, a := range aggs {
		t.Rows = append(t.Rows, []any{a.BucketStart.String(), a.Ticker, a.Senators, a.Trades, a.TotalEstimate})
	}
	return t
}

// TickerSeries is one ticker's monthly pivot.
type TickerSeries struct {
	Ticker string
	Points []domain.MonthlyPoint
}

// MonthlyTable lays out one or more monthly series in long form, one row per
// ticker and month. Series projected away by the mode are left empty.
func MonthlyTable(series []TickerSeries) Table {
	t := Table{
		Name:   "monthly_timeseries",
		Header: []string{"ticker", "month_start", "buy_senators", "sell_senators"},
	}
	for _, s := range series {
		for _, p := range s.Points {
			t.Rows = append(t.Rows, []any{s.Ticker, p.MonthStart.String(), optional(p.BuySenators), optional(p.SellSenators)})
		}
	}
	if t.Rows == nil {
		t.Rows = [][]any{}
	}
	return t
}

func optional(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

// cellString formats a cell for text formats.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
