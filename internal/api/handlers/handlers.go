// Package handlers exposes the read-only trade analytics over HTTP.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/senate-trades/internal/api/middleware"
	"github.com/dvloznov/senate-trades/internal/domain"
	"github.com/dvloznov/senate-trades/internal/query"
)

// ActivityService is the query surface the handlers depend on.
type ActivityService interface {
	ListTransactions(ctx context.Context, req query.ListRequest) ([]domain.Transaction, error)
	CountTransactions(ctx context.Context, req query.CountRequest) (domain.Count, error)
	ListParties(ctx context.Context, limit string) ([]domain.Party, error)
	ListTickers(ctx context.Context, limit string) ([]domain.Ticker, error)
	TopActivity(ctx context.Context, req query.TopRequest) ([]domain.BucketAggregate, error)
	MonthlyTimeseries(ctx context.Context, req query.TimeseriesRequest) ([]domain.MonthlyPoint, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TransactionsHandler handles transaction listing endpoints.
type TransactionsHandler struct {
	svc ActivityService
	log zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(svc ActivityService, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{svc: svc, log: log}
}

// ListTransactions handles GET /transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := query.ListRequest{
		PartyName: first(q.Get("party_name"), q.Get("senator")),
		Side:      q.Get("side"),
		Ticker:    q.Get("ticker"),
		Start:     q.Get("start"),
		End:       q.Get("end"),
		Sort:      q.Get("sort"),
		Order:     q.Get("order"),
		Limit:     q.Get("limit"),
		Offset:    q.Get("offset"),
	}

	transactions, err := h.svc.ListTransactions(r.Context(), req)
	if err != nil {
		middleware.WriteAPIError(w, r, err, "Failed to list transactions")
		return
	}

	middleware.WriteJSON(w, r, http.StatusOK, transactions)
}

// CountTransactions handles GET /transactions/count
func (h *TransactionsHandler) CountTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := query.CountRequest{
		PartyName: first(q.Get("party_name"), q.Get("senator")),
		Side:      q.Get("side"),
		Ticker:    q.Get("ticker"),
		Start:     q.Get("start"),
		End:       q.Get("end"),
	}

	count, err := h.svc.CountTransactions(r.Context(), req)
	if err != nil {
		middleware.WriteAPIError(w, r, err, "Failed to count transactions")
		return
	}

	middleware.WriteJSON(w, r, http.StatusOK, count)
}

// DirectoryHandler lists the distinct parties and tickers.
type DirectoryHandler struct {
	svc ActivityService
	log zerolog.Logger
}

// NewDirectoryHandler creates a new directory handler.
func NewDirectoryHandler(svc ActivityService, log zerolog.Logger) *DirectoryHandler {
	return &DirectoryHandler{svc: svc, log: log}
}

// ListParties handles GET /parties and GET /senators
func (h *DirectoryHandler) ListParties(w http.ResponseWriter, r *http.Request) {
	parties, err := h.svc.ListParties(r.Context(), r.URL.Query().Get("limit"))
	if err != nil {
		middleware.WriteAPIError(w, r, err, "Failed to list parties")
		return
	}

	middleware.WriteJSON(w, r, http.StatusOK, parties)
}

// ListTickers handles GET /tickers
func (h *DirectoryHandler) ListTickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.svc.ListTickers(r.Context(), r.URL.Query().Get("limit"))
	if err != nil {
		middleware.WriteAPIError(w, r, err, "Failed to list tickers")
		return
	}

	middleware.WriteJSON(w, r, http.StatusOK, tickers)
}

// ActivityHandler serves the aggregated activity views.
type ActivityHandler struct {
	svc ActivityService
	log zerolog.Logger
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(svc ActivityService, log zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{svc: svc, log: log}
}

// TopActivity handles GET /activity/top
func (h *ActivityHandler) TopActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := query.TopRequest{
		Period: q.Get("period"),
		Side:   q.Get("side"),
		TopN:   first(q.Get("top_n"), q.Get("topN")),
		Start:  q.Get("start"),
		End:    q.Get("end"),
	}

	aggregates, err := h.svc.TopActivity(r.Context(), req)
	if err != nil {
		middleware.WriteAPIError(w, r, err, "Failed to rank activity")
		return
	}

	middleware.WriteJSON(w, r, http.StatusOK, aggregates)
}

// MonthlyTimeseries handles GET /timeseries/monthly
func (h *ActivityHandler) MonthlyTimeseries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := query.TimeseriesRequest{
		Ticker: q.Get("ticker"),
		Mode:   q.Get("mode"),
	}

	points, err := h.svc.MonthlyTimeseries(r.Context(), req)
	if err != nil {
		middleware.WriteAPIError(w, r, err, "Failed to build monthly timeseries")
		return
	}

	middleware.WriteJSON(w, r, http.StatusOK, points)
}

// HealthHandler reports liveness and store reachability.
type HealthHandler struct {
	store Pinger
	log   zerolog.Logger
	now   func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store Pinger, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{store: store, log: log, now: time.Now}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status": "healthy",
		"time":   h.now().UTC().Format(time.RFC3339),
	}

	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("Health check failed")
		body["status"] = "unhealthy"
		body["error"] = "store unreachable"
		middleware.WriteJSON(w, r, http.StatusServiceUnavailable, body)
		return
	}

	middleware.WriteJSON(w, r, http.StatusOK, body)
}

// first returns the first non-empty value, so a canonical parameter name wins
// over its alias.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
