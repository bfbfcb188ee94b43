package query

import (
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

// InvalidParameterError reports a request parameter that failed allow-list or
// range validation. No query is ever built once one of these is returned.
type InvalidParameterError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %q: allowed %s", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

func invalid(field, value string, allowed ...string) *InvalidParameterError {
	return &InvalidParameterError{Field: field, Value: value, Allowed: allowed}
}

// SortColumn selects the primary ordering of a transaction listing.
type SortColumn string

const (
	SortTradeDate      SortColumn = "trade_date"
	SortEstimatedValue SortColumn = "estimated_value"
	SortTicker         SortColumn = "ticker"
	SortPartyName      SortColumn = "party_name"
	SortSide           SortColumn = "side"
)

// sortColumns maps each public sort key to the storage column it orders by.
var sortColumns = map[SortColumn]string{
	SortTradeDate:      colDate,
	SortEstimatedValue: colEstimate,
	SortTicker:         colTicker,
	SortPartyName:      colParty,
	SortSide:           colSide,
}

// SortOrder is the direction of a listing.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

var sortOrders = map[SortOrder]string{
	OrderAsc:  "ASC",
	OrderDesc: "DESC",
}

// Period is the calendar bucket used by activity rankings.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Mode selects which series a monthly pivot returns.
type Mode string

const (
	ModeBuy  Mode = "buy"
	ModeSell Mode = "sell"
	ModeBoth Mode = "both"
)

// Defaults and bounds for request parameters.
const (
	DefaultLimit        = 50
	MaxLimit            = 200
	DefaultTopN         = 10
	MaxTopN             = 50
	DefaultPartiesLimit = 200
	MaxPartiesLimit     = 1000
	DefaultTickersLimit = 5000
	MaxTickersLimit     = 10000

	dateLayout = "YYYY-MM-DD"
)

// ParseSortColumn canonicalizes a sort key. Empty input yields trade_date.
func ParseSortColumn(raw string) (SortColumn, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return SortTradeDate, nil
	}
	if _, ok := sortColumns[SortColumn(v)]; !ok {
		return "", invalid("sort", raw, "estimated_value", "party_name", "side", "ticker", "trade_date")
	}
	return SortColumn(v), nil
}

// ParseSortOrder canonicalizes a sort direction. Empty input yields desc.
func ParseSortOrder(raw string) (SortOrder, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return OrderDesc, nil
	}
	if _, ok := sortOrders[SortOrder(v)]; !ok {
		return "", invalid("order", raw, "asc", "desc")
	}
	return SortOrder(v), nil
}

// ParsePeriod canonicalizes a bucket period. Empty input yields week.
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PeriodWeek, nil
	case PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", invalid("period", raw, "month", "week", "year")
}

// ParseSide canonicalizes a trade side. Empty input yields BUY.
func ParseSide(raw string) (Side, error) {
	switch s := Side(strings.ToUpper(strings.TrimSpace(raw))); s {
	case "":
		return SideBuy, nil
	case SideBuy, SideSell:
		return s, nil
	}
	return "", invalid("side", raw, "BUY", "SELL")
}

// ParseMode canonicalizes a pivot mode. Empty input yields both.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ModeBoth, nil
	case ModeBuy, ModeSell, ModeBoth:
		return m, nil
	}
	return "", invalid("mode", raw, "both", "buy", "sell")
}

// ParseBoundedInt parses an integer parameter that must fall in [lo, hi].
// Empty input yields def.
func ParseBoundedInt(field, raw string, def, lo, hi int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, invalid(field, raw, fmt.Sprintf("integer in [%d, %d]", lo, hi))
	}
	return n, nil
}

// ParseOffset parses a non-negative page offset. Empty input yields 0.
func ParseOffset(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, invalid("offset", raw, "integer >= 0")
	}
	return n, nil
}

// ParseDate parses an optional calendar date. Empty input yields nil.
func ParseDate(field, raw string) (*civil.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return nil, invalid(field, raw, dateLayout)
	}
	return &d, nil
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
