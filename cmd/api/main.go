package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dvloznov/senate-trades/internal/activity"
	"github.com/dvloznov/senate-trades/internal/api"
	"github.com/dvloznov/senate-trades/internal/config"
	"github.com/dvloznov/senate-trades/internal/infra"
	"github.com/dvloznov/senate-trades/internal/logger"
	"github.com/dvloznov/senate-trades/internal/metrics"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", os.Getenv("SENATE_TRADES_CONFIG"), "Path to YAML config file (or set SENATE_TRADES_CONFIG env)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger
	log, err := logger.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to create logger")
	}

	ctx := context.Background()

	st, err := infra.Open(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open transaction store")
	}
	defer st.Close()

	collector := metrics.New()
	svc := activity.NewService(st, log, activity.WithObserver(collector))

	server := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.Server.Port),
		Handler: api.NewRouter(cfg, api.Deps{
			Service: svc,
			Store:   svc,
			Metrics: collector,
			Log:     log,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("driver", cfg.Store.Driver).
			Str("table", cfg.Store.Table).
			Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
