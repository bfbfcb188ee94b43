package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveQuery(t *testing.T) {
	c := New()

	c.ObserveQuery("TopActivity", 20*time.Millisecond, nil)
	c.ObserveQuery("TopActivity", 30*time.Millisecond, errors.New("timeout"))
	c.ObserveQuery("ListTickers", time.Millisecond, nil)

	body := scrape(t, c)
	assert.Contains(t, body, `senate_trades_store_query_errors_total{op="TopActivity"} 1`)
	assert.NotContains(t, body, `senate_trades_store_query_errors_total{op="ListTickers"}`)
	assert.Contains(t, body, `senate_trades_store_query_duration_seconds_count{op="TopActivity",outcome="error"} 1`)
	assert.Contains(t, body, `senate_trades_store_query_duration_seconds_count{op="TopActivity",outcome="ok"} 1`)
	assert.Contains(t, body, `senate_trades_store_query_duration_seconds_count{op="ListTickers",outcome="ok"} 1`)
}

func TestObserveRequest(t *testing.T) {
	c := New()

	c.ObserveRequest("/activity/top", "GET", 200, 5*time.Millisecond)
	c.ObserveRequest("/activity/top", "GET", 200, 7*time.Millisecond)
	c.ObserveRequest("/activity/top", "GET", 400, time.Millisecond)

	body := scrape(t, c)
	assert.Contains(t, body, `senate_trades_http_requests_total{method="GET",route="/activity/top",status="200"} 2`)
	assert.Contains(t, body, `senate_trades_http_requests_total{method="GET",route="/activity/top",status="400"} 1`)
	assert.Contains(t, body, `senate_trades_http_request_duration_seconds_count{method="GET",route="/activity/top"} 3`)
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveQuery("ListParties", time.Millisecond, nil)
	c.ObserveRequest("/parties", "GET", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestHandlerIncludesRuntimeMetrics(t *testing.T) {
	assert.Contains(t, scrape(t, New()), "go_goroutines")
}
