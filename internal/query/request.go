package query

import "cloud.google.com/go/civil"

// ListRequest carries the raw, untrusted parameters of a transaction listing.
type ListRequest struct {
	PartyName string
	Side      string
	Ticker    string
	Start     string
	End       string
	Sort      string
	Order     string
	Limit     string
	Offset    string
}

// ListParams is a validated ListRequest.
type ListParams struct {
	Filter Filter
	Sort   SortColumn
	Order  SortOrder
	Limit  int
	Offset int
}

// Validate checks every enum and bound and returns canonical parameters.
func (r ListRequest) Validate() (ListParams, error) {
	sort, err := ParseSortColumn(r.Sort)
	if err != nil {
		return ListParams{}, err
	}
	order, err := ParseSortOrder(r.Order)
	if err != nil {
		return ListParams{}, err
	}
	limit, err := ParseBoundedInt("limit", r.Limit, DefaultLimit, 1, MaxLimit)
	if err != nil {
		return ListParams{}, err
	}
	offset, err := ParseOffset(r.Offset)
	if err != nil {
		return ListParams{}, err
	}
	f, err := parseFilter(r.PartyName, r.Side, r.Ticker, r.Start, r.End)
	if err != nil {
		return ListParams{}, err
	}
	return ListParams{Filter: f, Sort: sort, Order: order, Limit: limit, Offset: offset}, nil
}

// CountRequest carries the raw filters of a transaction count.
type CountRequest struct {
	PartyName string
	Side      string
	Ticker    string
	Start     string
	End       string
}

// Validate parses the date range and returns the filter.
func (r CountRequest) Validate() (Filter, error) {
	return parseFilter(r.PartyName, r.Side, r.Ticker, r.Start, r.End)
}

// TopRequest carries the raw parameters of a bucketed activity ranking.
type TopRequest struct {
	Period string
	Side   string
	TopN   string
	Start  string
	End    string
}

// TopParams is a validated TopRequest.
type TopParams struct {
	Period Period
	Side   Side
	TopN   int
	Start  *civil.Date
	End    *civil.Date
}

// Validate checks period, side, top-N bounds and the date range.
func (r TopRequest) Validate() (TopParams, error) {
	period, err := ParsePeriod(r.Period)
	if err != nil {
		return TopParams{}, err
	}
	side, err := ParseSide(r.Side)
	if err != nil {
		return TopParams{}, err
	}
	n, err := ParseBoundedInt("top_n", r.TopN, DefaultTopN, 1, MaxTopN)
	if err != nil {
		return TopParams{}, err
	}
	start, err := ParseDate("start", r.Start)
	if err != nil {
		return TopParams{}, err
	}
	end, err := ParseDate("end", r.End)
	if err != nil {
		return TopParams{}, err
	}
	return TopParams{Period: period, Side: side, TopN: n, Start: start, End: end}, nil
}

// TimeseriesRequest carries the raw parameters of a monthly pivot.
type TimeseriesRequest struct {
	Ticker string
	Mode   string
}

// TimeseriesParams is a validated TimeseriesRequest.
type TimeseriesParams struct {
	Ticker string
	Mode   Mode
}

// Validate normalizes the ticker and checks the mode.
func (r TimeseriesRequest) Validate() (TimeseriesParams, error) {
	ticker := NormalizeTicker(r.Ticker)
	if ticker == "" {
		return TimeseriesParams{}, invalid("ticker", r.Ticker, "non-empty ticker symbol")
	}
	mode, err := ParseMode(r.Mode)
	if err != nil {
		return TimeseriesParams{}, err
	}
	return TimeseriesParams{Ticker: ticker, Mode: mode}, nil
}

// ParsePartiesLimit validates the page size of the distinct party listing.
func ParsePartiesLimit(raw string) (int, error) {
	return ParseBoundedInt("limit", raw, DefaultPartiesLimit, 1, MaxPartiesLimit)
}

// ParseTickersLimit validates the page size of the distinct ticker listing.
func ParseTickersLimit(raw string) (int, error) {
	return ParseBoundedInt("limit", raw, DefaultTickersLimit, 1, MaxTickersLimit)
}
