package query

import "cloud.google.com/go/civil"

// Storage columns of the transactions table. These are the only identifiers
// that ever appear in generated query text besides the configured table name.
const (
	colParty    = "full_name"
	colTicker   = "ticker"
	colSide     = "side"
	colDate     = "tx_date"
	colEstimate = "tx_estimate"
)

// Filter holds optional equality filters and an inclusive date range.
// Empty strings and nil dates leave the corresponding dimension unrestricted.
type Filter struct {
	PartyName string
	Side      string
	Ticker    string
	Start     *civil.Date
	End       *civil.Date
}

// Predicate is one bound comparison against a storage column.
type Predicate struct {
	Column string
	Op     string
	Value  any
}

// Predicates returns the filter's predicates in a fixed order: party, side,
// ticker, start, end. Filter values are never validated; any string is a legal
// match target.
func (f Filter) Predicates() []Predicate {
	var preds []Predicate
	if f.PartyName != "" {
		preds = append(preds, Predicate{Column: colParty, Op: "=", Value: f.PartyName})
	}
	if f.Side != "" {
		preds = append(preds, Predicate{Column: colSide, Op: "=", Value: f.Side})
	}
	if f.Ticker != "" {
		preds = append(preds, Predicate{Column: colTicker, Op: "=", Value: f.Ticker})
	}
	if f.Start != nil {
		preds = append(preds, Predicate{Column: colDate, Op: ">=", Value: *f.Start})
	}
	if f.End != nil {
		preds = append(preds, Predicate{Column: colDate, Op: "<=", Value: *f.End})
	}
	return preds
}

func parseFilter(party, side, ticker, start, end string) (Filter, error) {
	s, err := ParseDate("start", start)
	if err != nil {
		return Filter{}, err
	}
	e, err := ParseDate("end", end)
	if err != nil {
		return Filter{}, err
	}
	return Filter{PartyName: party, Side: side, Ticker: ticker, Start: s, End: e}, nil
}
