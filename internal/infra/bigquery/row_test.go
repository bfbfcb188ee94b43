package bigquery

import (
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowScanTransaction(t *testing.T) {
	r := row{"Jane Doe", "XYZ", "BUY", "2024-01-05", 1500.5}

	var (
		party, ticker, side, date string
		estimate                  *float64
	)
	require.NoError(t, r.Scan(&party, &ticker, &side, &date, &estimate))

	assert.Equal(t, "Jane Doe", party)
	assert.Equal(t, "XYZ", ticker)
	assert.Equal(t, "BUY", side)
	assert.Equal(t, "2024-01-05", date)
	require.NotNil(t, estimate)
	assert.InDelta(t, 1500.5, *estimate, 1e-9)
}

func TestRowScanNulls(t *testing.T) {
	r := row{nil, nil, nil}

	var (
		estimate *float64
		count    *int64
		name     = "stale"
	)
	require.NoError(t, r.Scan(&estimate, &count, &name))

	assert.Nil(t, estimate)
	assert.Nil(t, count)
	assert.Empty(t, name)
}

func TestRowScanAggregates(t *testing.T) {
	r := row{int64(2), int64(3), int64(300), civil.Date{Year: 2024, Month: time.January, Day: 1}}

	var (
		senators, trades int64
		total            float64
		bucket           civil.Date
	)
	require.NoError(t, r.Scan(&senators, &trades, &total, &bucket))

	assert.Equal(t, int64(2), senators)
	assert.Equal(t, int64(3), trades)
	assert.Equal(t, 300.0, total)
	assert.Equal(t, "2024-01-01", bucket.String())
}

func TestRowScanErrors(t *testing.T) {
	var s string
	assert.Error(t, row{"a", "b"}.Scan(&s), "column count mismatch")
	assert.Error(t, row{int64(1)}.Scan(&s), "type mismatch")

	var b bool
	assert.Error(t, row{true}.Scan(&b), "unsupported destination")
}

func TestParameters(t *testing.T) {
	d := civil.Date{Year: 2024, Month: time.June, Day: 30}
	params := Parameters([]any{"SELL", d, 5})

	require.Len(t, params, 3)
	assert.Equal(t, bigquery.QueryParameter{Name: "p1", Value: "SELL"}, params[0])
	assert.Equal(t, "p2", params[1].Name)
	assert.Equal(t, d, params[1].Value)
	assert.Equal(t, "p3", params[2].Name)
	assert.Equal(t, 5, params[2].Value)
}
