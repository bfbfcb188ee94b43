// Package api assembles the HTTP surface: routes, middleware and /metrics.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/senate-trades/internal/api/handlers"
	"github.com/dvloznov/senate-trades/internal/api/middleware"
	"github.com/dvloznov/senate-trades/internal/config"
	"github.com/dvloznov/senate-trades/internal/metrics"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Service handlers.ActivityService
	Store   handlers.Pinger
	Metrics *metrics.Collector
	Log     zerolog.Logger
}

// NewRouter builds the routed, instrumented handler.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Log))
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if cfg.Server.EnableMetrics {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, deps.Log).Handler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	transactions := handlers.NewTransactionsHandler(deps.Service, deps.Log)
	directory := handlers.NewDirectoryHandler(deps.Service, deps.Log)
	activity := handlers.NewActivityHandler(deps.Service, deps.Log)
	health := handlers.NewHealthHandler(deps.Store, deps.Log)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(queryTimeout(cfg)))

		r.Get("/transactions", transactions.ListTransactions)
		r.Get("/transactions/count", transactions.CountTransactions)
		r.Get("/parties", directory.ListParties)
		r.Get("/senators", directory.ListParties)
		r.Get("/tickers", directory.ListTickers)
		r.Get("/activity/top", activity.TopActivity)
		r.Get("/timeseries/monthly", activity.MonthlyTimeseries)
	})

	r.Get("/health", health.Health)
	if cfg.Server.EnableMetrics {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return r
}

func queryTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.QueryTimeout > 0 {
		return cfg.Server.QueryTimeout
	}
	return 20 * time.Second
}
