package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/senate-trades/internal/config"
	"github.com/dvloznov/senate-trades/internal/domain"
	"github.com/dvloznov/senate-trades/internal/query"
)

type stubService struct {
	listReq query.ListRequest
	topReq  query.TopRequest
	series  []query.TimeseriesRequest
}

func (s *stubService) ListTransactions(_ context.Context, req query.ListRequest) ([]domain.Transaction, error) {
	s.listReq = req
	return []domain.Transaction{}, nil
}

func (s *stubService) CountTransactions(context.Context, query.CountRequest) (domain.Count, error) {
	return domain.Count{Total: 7}, nil
}

func (s *stubService) ListParties(_ context.Context, limit string) ([]domain.Party, error) {
	if _, err := query.ParsePartiesLimit(limit); err != nil {
		return nil, err
	}
	return []domain.Party{{PartyName: "A"}}, nil
}

func (s *stubService) ListTickers(context.Context, string) ([]domain.Ticker, error) {
	return []domain.Ticker{{Ticker: "XYZ"}}, nil
}

func (s *stubService) TopActivity(_ context.Context, req query.TopRequest) ([]domain.BucketAggregate, error) {
	s.topReq = req
	return []domain.BucketAggregate{{
		BucketStart: civil.Date{Year: 2024, Month: time.January, Day: 1},
		Ticker:      "XYZ", Senators: 2, Trades: 2, TotalEstimate: 300,
	}}, nil
}

func (s *stubService) MonthlyTimeseries(_ context.Context, req query.TimeseriesRequest) ([]domain.MonthlyPoint, error) {
	s.series = append(s.series, req)
	n := int64(1)
	return []domain.MonthlyPoint{{MonthStart: civil.Date{Year: 2024, Month: time.February, Day: 1}, BuySenators: &n, SellSenators: &n}}, nil
}

type fakeUploader struct {
	bucket, object string
	closed         bool
}

func (u *fakeUploader) Upload(_ context.Context, bucket, object, _ string, _ []byte) (string, error) {
	u.bucket, u.object = bucket, object
	return "gs://" + bucket + "/" + object, nil
}

func (u *fakeUploader) Close() error {
	u.closed = true
	return nil
}

func newTestApp(t *testing.T, svc *stubService) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := &config.Config{Export: config.ExportConfig{Dir: t.TempDir()}}
	return &app{
		out: &out,
		log: zerolog.Nop(),
		open: func(context.Context, string) (*env, error) {
			return &env{svc: svc, cfg: cfg, close: func() {}}, nil
		},
		uploader: func(context.Context) (uploader, error) {
			t.Fatal("unexpected GCS client")
			return nil, nil
		},
	}, &out
}

func TestListPassesFlags(t *testing.T) {
	svc := &stubService{}
	a, out := newTestApp(t, svc)

	err := a.run(context.Background(), "list", []string{"-party", "Jane Doe", "-sort", "ticker", "-order", "asc", "-limit", "5"})
	require.NoError(t, err)

	assert.Equal(t, query.ListRequest{PartyName: "Jane Doe", Sort: "ticker", Order: "asc", Limit: "5"}, svc.listReq)
	assert.JSONEq(t, `[]`, out.String())
}

func TestCountPrintsTotal(t *testing.T) {
	a, out := newTestApp(t, &stubService{})

	require.NoError(t, a.run(context.Background(), "count", []string{"-side", "BUY"}))
	assert.JSONEq(t, `{"total":7}`, out.String())
}

func TestPartiesRejectsBadLimit(t *testing.T) {
	a, _ := newTestApp(t, &stubService{})

	err := a.run(context.Background(), "parties", []string{"-limit", "5000"})
	var ipe *query.InvalidParameterError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "limit", ipe.Field)
}

func TestTopDefaults(t *testing.T) {
	svc := &stubService{}
	a, out := newTestApp(t, svc)

	require.NoError(t, a.run(context.Background(), "top", nil))
	assert.Equal(t, query.TopRequest{Period: "month", Side: "BUY"}, svc.topReq)
	assert.Contains(t, out.String(), `"n_senators": 2`)
}

func TestExportMonthlyToDir(t *testing.T) {
	svc := &stubService{}
	a, out := newTestApp(t, svc)
	dir := t.TempDir()

	err := a.run(context.Background(), "export", []string{
		"-report", "monthly", "-tickers", "xyz, abc", "-format", "csv", "-dest", dir,
	})
	require.NoError(t, err)
	assert.Len(t, svc.series, 2)
	assert.Contains(t, out.String(), "Exported 2 rows to "+dir)

	files, err := filepath.Glob(filepath.Join(dir, "monthly_timeseries-*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{
		"ticker,month_start,buy_senators,sell_senators",
		"XYZ,2024-02-01,1,1",
		"ABC,2024-02-01,1,1",
	}, lines)
}

func TestExportUsesConfiguredDir(t *testing.T) {
	a, out := newTestApp(t, &stubService{})

	require.NoError(t, a.run(context.Background(), "export", []string{"-format", "xlsx"}))
	assert.Contains(t, out.String(), ".xlsx")
}

func TestExportToBucketDest(t *testing.T) {
	a, out := newTestApp(t, &stubService{})
	up := &fakeUploader{}
	a.uploader = func(context.Context) (uploader, error) { return up, nil }

	err := a.run(context.Background(), "export", []string{"-format", "json", "-dest", "gs://reports/weekly"})
	require.NoError(t, err)

	assert.Equal(t, "reports", up.bucket)
	assert.True(t, strings.HasPrefix(up.object, "weekly/top_activity-"), up.object)
	assert.True(t, up.closed)
	assert.Contains(t, out.String(), "Exported 1 rows to gs://reports/weekly/top_activity-")
}

func TestExportRejectsBucketDestWithoutPrefix(t *testing.T) {
	a, _ := newTestApp(t, &stubService{})

	err := a.run(context.Background(), "export", []string{"-dest", "gs://reports"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid GCS URI")
}

func TestExportRejectsUnknownFormatAndReport(t *testing.T) {
	a, _ := newTestApp(t, &stubService{})

	assert.Error(t, a.run(context.Background(), "export", []string{"-format", "pdf"}))
	assert.Error(t, a.run(context.Background(), "export", []string{"-report", "weekly"}))
}

func TestUnknownCommand(t *testing.T) {
	a, _ := newTestApp(t, &stubService{})
	assert.ErrorIs(t, a.run(context.Background(), "ingest", nil), errUsage)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, splitList(" A, ,B ,"))
	assert.Nil(t, splitList(""))
}
