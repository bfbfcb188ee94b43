package query

import (
	"errors"
	"testing"
)

func TestParseSortColumn(t *testing.T) {
	tests := []struct {
		raw     string
		want    SortColumn
		wantErr bool
	}{
		{"", SortTradeDate, false},
		{"trade_date", SortTradeDate, false},
		{"TICKER", SortTicker, false},
		{"  Party_Name ", SortPartyName, false},
		{"estimated_value", SortEstimatedValue, false},
		{"side", SortSide, false},
		{"tx_date", "", true},
		{"ticker; DROP TABLE transactions", "", true},
		{"1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSortColumn(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSortColumn(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSortColumn(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestInvalidParameterCarriesAllowList(t *testing.T) {
	_, err := ParseSortOrder("sideways")

	var ipe *InvalidParameterError
	if !errors.As(err, &ipe) {
		t.Fatalf("expected InvalidParameterError, got %T", err)
	}
	if ipe.Field != "order" {
		t.Errorf("Field = %q, want %q", ipe.Field, "order")
	}
	if len(ipe.Allowed) != 2 || ipe.Allowed[0] != "asc" || ipe.Allowed[1] != "desc" {
		t.Errorf("Allowed = %v, want [asc desc]", ipe.Allowed)
	}
}

func TestParseEnums(t *testing.T) {
	if p, err := ParsePeriod(""); err != nil || p != PeriodWeek {
		t.Errorf("ParsePeriod default = %q, %v", p, err)
	}
	if p, err := ParsePeriod("Month"); err != nil || p != PeriodMonth {
		t.Errorf("ParsePeriod(Month) = %q, %v", p, err)
	}
	if _, err := ParsePeriod("quarter"); err == nil {
		t.Error("ParsePeriod(quarter) should fail")
	}

	if s, err := ParseSide(""); err != nil || s != SideBuy {
		t.Errorf("ParseSide default = %q, %v", s, err)
	}
	if s, err := ParseSide("sell"); err != nil || s != SideSell {
		t.Errorf("ParseSide(sell) = %q, %v", s, err)
	}
	if _, err := ParseSide("HOLD"); err == nil {
		t.Error("ParseSide(HOLD) should fail")
	}

	if m, err := ParseMode(""); err != nil || m != ModeBoth {
		t.Errorf("ParseMode default = %q, %v", m, err)
	}
	if m, err := ParseMode("BUY"); err != nil || m != ModeBuy {
		t.Errorf("ParseMode(BUY) = %q, %v", m, err)
	}
	if _, err := ParseMode("neither"); err == nil {
		t.Error("ParseMode(neither) should fail")
	}
}

func TestParseBoundedInt(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"default", "", DefaultLimit, false},
		{"lower bound", "1", 1, false},
		{"upper bound", "200", 200, false},
		{"zero", "0", 0, true},
		{"above max", "201", 0, true},
		{"negative", "-5", 0, true},
		{"not a number", "fifty", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBoundedInt("limit", tt.raw, DefaultLimit, 1, MaxLimit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseOffset(t *testing.T) {
	if n, err := ParseOffset(""); err != nil || n != 0 {
		t.Errorf("ParseOffset default = %d, %v", n, err)
	}
	if n, err := ParseOffset("400"); err != nil || n != 400 {
		t.Errorf("ParseOffset(400) = %d, %v", n, err)
	}
	if _, err := ParseOffset("-1"); err == nil {
		t.Error("ParseOffset(-1) should fail")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("start", "2024-01-05")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.String() != "2024-01-05" {
		t.Errorf("ParseDate = %s, want 2024-01-05", d)
	}

	if d, err := ParseDate("start", ""); err != nil || d != nil {
		t.Errorf("ParseDate(empty) = %v, %v; want nil, nil", d, err)
	}

	_, err = ParseDate("end", "01/05/2024")
	var ipe *InvalidParameterError
	if !errors.As(err, &ipe) || ipe.Field != "end" {
		t.Errorf("ParseDate(bad) error = %v, want InvalidParameterError on end", err)
	}
}

func TestListRequestValidate(t *testing.T) {
	p, err := ListRequest{Ticker: "XYZ", Sort: "Ticker", Order: "ASC"}.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if p.Sort != SortTicker || p.Order != OrderAsc {
		t.Errorf("sort/order = %s/%s, want ticker/asc", p.Sort, p.Order)
	}
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("limit/offset = %d/%d, want %d/0", p.Limit, p.Offset, DefaultLimit)
	}
	if p.Filter.Ticker != "XYZ" {
		t.Errorf("Filter.Ticker = %q, want XYZ", p.Filter.Ticker)
	}

	if _, err := (ListRequest{Limit: "500"}).Validate(); err == nil {
		t.Error("expected limit 500 to be rejected")
	}
}

func TestTimeseriesRequestValidate(t *testing.T) {
	p, err := TimeseriesRequest{Ticker: "  nvda "}.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if p.Ticker != "NVDA" || p.Mode != ModeBoth {
		t.Errorf("got %+v, want NVDA/both", p)
	}

	if _, err := (TimeseriesRequest{Ticker: "   "}).Validate(); err == nil {
		t.Error("expected blank ticker to be rejected")
	}
}

func TestTopRequestValidate(t *testing.T) {
	p, err := TopRequest{Period: "YEAR", Side: "sell", TopN: "50", Start: "2023-01-01"}.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if p.Period != PeriodYear || p.Side != SideSell || p.TopN != 50 {
		t.Errorf("got %+v", p)
	}
	if p.Start == nil || p.End != nil {
		t.Errorf("Start/End = %v/%v, want set/nil", p.Start, p.End)
	}

	if _, err := (TopRequest{TopN: "51"}).Validate(); err == nil {
		t.Error("expected top_n 51 to be rejected")
	}
}
