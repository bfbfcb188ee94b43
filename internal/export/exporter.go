package export

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/senate-trades/internal/domain"
	"github.com/dvloznov/senate-trades/internal/query"
)

// maxConcurrentSeries caps parallel monthly series queries.
const maxConcurrentSeries = 4

// Source is the query surface reports are built from.
type Source interface {
	TopActivity(ctx context.Context, req query.TopRequest) ([]domain.BucketAggregate, error)
	MonthlyTimeseries(ctx context.Context, req query.TimeseriesRequest) ([]domain.MonthlyPoint, error)
}

// Result describes a stored report.
type Result struct {
	Location string
	Rows     int
	Bytes    int
}

// Exporter builds, renders and stores reports.
type Exporter struct {
	src  Source
	sink Sink
	log  zerolog.Logger
	now  func() time.Time
}

// NewExporter creates an exporter writing to sink.
func NewExporter(src Source, sink Sink, log zerolog.Logger) *Exporter {
	return &Exporter{src: src, sink: sink, log: log, now: time.Now}
}

// ExportTop renders a bucketed activity ranking.
func (e *Exporter) ExportTop(ctx context.Context, req query.TopRequest, f Format) (Result, error) {
	aggs, err := e.src.TopActivity(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("ExportTop: %w", err)
	}
	return e.store(ctx, TopTable(aggs), f)
}

// ExportMonthly renders the monthly series of each ticker. Series are
// queried concurrently; rows keep the order of tickers.
func (e *Exporter) ExportMonthly(ctx context.Context, tickers []string, mode string, f Format) (Result, error) {
	if len(tickers) == 0 {
		return Result{}, fmt.Errorf("ExportMonthly: at least one ticker is required")
	}

	series := make([]TickerSeries, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSeries)

	for i, ticker := range tickers {
		g.Go(func() error {
			points, err := e.src.MonthlyTimeseries(gctx, query.TimeseriesRequest{Ticker: ticker, Mode: mode})
			if err != nil {
				return fmt.Errorf("ticker %q: %w", ticker, err)
			}
			series[i] = TickerSeries{Ticker: query.NormalizeTicker(ticker), Points: points}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("ExportMonthly: %w", err)
	}

	return e.store(ctx, MonthlyTable(series), f)
}

func (e *Exporter) store(ctx context.Context, t Table, f Format) (Result, error) {
	data, err := Render(t, f)
	if err != nil {
		return Result{}, fmt.Errorf("render %s: %w", t.Name, err)
	}

	location, err := e.sink.Put(ctx, FileName(t.Name, f, e.now()), f.ContentType(), data)
	if err != nil {
		return Result{}, err
	}

	e.log.Info().
		Str("report", t.Name).
		Str("format", string(f)).
		Int("rows", len(t.Rows)).
		Str("location", location).
		Msg("Report exported")

	return Result{Location: location, Rows: len(t.Rows), Bytes: len(data)}, nil
}
