// Package activity answers the read-only analytical queries over disclosed
// trades: filtered listings, counts, bucketed rankings and monthly pivots.
//
// Every operation validates its raw parameters first, builds a parameterized
// statement from canonical values, and only then acquires a store connection,
// which is released before the operation returns.
package activity

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/senate-trades/internal/domain"
	"github.com/dvloznov/senate-trades/internal/query"
	"github.com/dvloznov/senate-trades/internal/store"
)

// QueryObserver receives the duration and outcome of every store query.
type QueryObserver interface {
	ObserveQuery(op string, d time.Duration, err error)
}

// Service runs analytical queries against a transaction store.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	store    store.Store
	log      zerolog.Logger
	observer QueryObserver
}

// Option configures a Service.
type Option func(*Service)

// WithObserver reports query timings to o.
func WithObserver(o QueryObserver) Option {
	return func(s *Service) { s.observer = o }
}

// NewService creates a Service over st.
func NewService(st store.Store, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{store: st, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTransactions returns one page of transactions matching the filters.
func (s *Service) ListTransactions(ctx context.Context, req query.ListRequest) ([]domain.Transaction, error) {
	params, err := req.Validate()
	if err != nil {
		return nil, err
	}
	stmt := query.ListTransactions(s.store.Dialect(), params)

	out := make([]domain.Transaction, 0, params.Limit)
	err = s.run(ctx, "ListTransactions", stmt, func(row store.Row) error {
		var (
			tx   domain.Transaction
			date string
		)
		if err := row.Scan(&tx.PartyName, &tx.Ticker, &tx.Side, &date, &tx.EstimatedValue); err != nil {
			return fmt.Errorf("scan transaction: %w", err)
		}
		if tx.TradeDate, err = parseDate(date); err != nil {
			return err
		}
		out = append(out, tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountTransactions returns the number of transactions matching the filters.
func (s *Service) CountTransactions(ctx context.Context, req query.CountRequest) (domain.Count, error) {
	filter, err := req.Validate()
	if err != nil {
		return domain.Count{}, err
	}
	stmt := query.CountTransactions(s.store.Dialect(), filter)

	var count domain.Count
	err = s.run(ctx, "CountTransactions", stmt, func(row store.Row) error {
		if err := row.Scan(&count.Total); err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Count{}, err
	}
	return count, nil
}

// ListParties returns distinct party names in ascending order.
func (s *Service) ListParties(ctx context.Context, limit string) ([]domain.Party, error) {
	n, err := query.ParsePartiesLimit(limit)
	if err != nil {
		return nil, err
	}
	stmt := query.DistinctParties(s.store.Dialect(), n)

	out := []domain.Party{}
	err = s.run(ctx, "ListParties", stmt, func(row store.Row) error {
		var p domain.Party
		if err := row.Scan(&p.PartyName); err != nil {
			return fmt.Errorf("scan party: %w", err)
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListTickers returns distinct tickers in ascending order, without
// placeholder symbols.
func (s *Service) ListTickers(ctx context.Context, limit string) ([]domain.Ticker, error) {
	n, err := query.ParseTickersLimit(limit)
	if err != nil {
		return nil, err
	}
	stmt := query.DistinctTickers(s.store.Dialect(), n)

	out := []domain.Ticker{}
	err = s.run(ctx, "ListTickers", stmt, func(row store.Row) error {
		var t domain.Ticker
		if err := row.Scan(&t.Ticker); err != nil {
			return fmt.Errorf("scan ticker: %w", err)
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TopActivity ranks tickers within each calendar bucket and keeps the top N.
func (s *Service) TopActivity(ctx context.Context, req query.TopRequest) ([]domain.BucketAggregate, error) {
	params, err := req.Validate()
	if err != nil {
		return nil, err
	}
	stmt := query.TopActivity(s.store.Dialect(), params)

	out := []domain.BucketAggregate{}
	err = s.run(ctx, "TopActivity", stmt, func(row store.Row) error {
		var (
			agg    domain.BucketAggregate
			bucket string
		)
		if err := row.Scan(&bucket, &agg.Ticker, &agg.Senators, &agg.Trades, &agg.TotalEstimate); err != nil {
			return fmt.Errorf("scan bucket aggregate: %w", err)
		}
		if agg.BucketStart, err = parseDate(bucket); err != nil {
			return err
		}
		out = append(out, agg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MonthlyTimeseries returns per-month distinct buying and selling parties for
// one ticker. Modes buy and sell drop the other series from every point.
func (s *Service) MonthlyTimeseries(ctx context.Context, req query.TimeseriesRequest) ([]domain.MonthlyPoint, error) {
	params, err := req.Validate()
	if err != nil {
		return nil, err
	}
	stmt := query.MonthlySeries(s.store.Dialect(), params)

	out := []domain.MonthlyPoint{}
	err = s.run(ctx, "MonthlyTimeseries", stmt, func(row store.Row) error {
		var (
			month     string
			buy, sell *int64
		)
		if err := row.Scan(&month, &buy, &sell); err != nil {
			return fmt.Errorf("scan monthly point: %w", err)
		}
		start, err := parseDate(month)
		if err != nil {
			return err
		}
		out = append(out, project(start, zeroIfNil(buy), zeroIfNil(sell), params.Mode))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return &StorageError{Op: "Ping", Err: err}
	}
	return nil
}

// run executes stmt on a connection scoped to this call.
func (s *Service) run(ctx context.Context, op string, stmt query.Statement, scan func(store.Row) error) error {
	conn, err := s.store.Acquire(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("op", op).Msg("Failed to acquire store connection")
		return &StorageError{Op: op, Err: fmt.Errorf("acquire connection: %w", err)}
	}
	defer conn.Release()

	start := time.Now()
	err = conn.Query(ctx, stmt, scan)
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveQuery(op, elapsed, err)
	}
	if err != nil {
		s.log.Error().Err(err).Str("op", op).Dur("duration", elapsed).Msg("Store query failed")
		return &StorageError{Op: op, Err: err}
	}

	s.log.Debug().Str("op", op).Dur("duration", elapsed).Msg("Store query completed")
	return nil
}

func parseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

func zeroIfNil(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}

// project keeps the series selected by mode.
func project(month civil.Date, buy, sell int64, mode query.Mode) domain.MonthlyPoint {
	p := domain.MonthlyPoint{MonthStart: month}
	if mode == query.ModeBuy || mode == query.ModeBoth {
		p.BuySenators = &buy
	}
	if mode == query.ModeSell || mode == query.ModeBoth {
		p.SellSenators = &sell
	}
	return p
}
