package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/angeloszaimis/status-page/config"
	"github.com/angeloszaimis/status-page/internal/handler"
	"github.com/angeloszaimis/status-page/internal/healthcheck"
	"github.com/angeloszaimis/status-page/internal/httpserver"
	"github.com/angeloszaimis/status-page/internal/metrics"
	"github.com/angeloszaimis/status-page/pkg/logger"
)

const metricsBufferSize = 1000

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		AddSource:   true,
		Environment: cfg.Server.Environment,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	router, err := setup(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to set up status page", slog.Any("err", err))
		os.Exit(1)
	}

	srv, err := httpserver.New(cfg.Server.Address, router,
		httpserver.WithWriteTimeout(healthcheck.Timeout+httpserver.DefaultWriteTimeout))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Status page running", slog.String("address", cfg.Server.Address))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting status page", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// setup builds the probe pipeline for cfg and returns the routed handler.
// The metrics collector runs until ctx is cancelled.
func setup(ctx context.Context, cfg *config.Config, log *slog.Logger) (http.Handler, error) {
	groups, err := cfg.Groups()
	if err != nil {
		return nil, fmt.Errorf("build service groups: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}

	collector := metrics.NewCollector(metricsBufferSize, log)
	collector.Start(ctx)

	prober := healthcheck.New(log, healthcheck.WithObserver(collector))

	statusHandler := handler.NewStatusHandler(log, prober, groups, collector,
		handler.WithTitle(cfg.Dashboard.Title),
		handler.WithLocation(loc))

	limiter := handler.NewLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)

	for _, g := range groups {
		log.Debug("Monitoring service",
			slog.String("name", g.Name()),
			slog.String("proxy", g.Proxy().String()),
			slog.Int("endpoints", len(g.Endpoints())))
	}

	return setupRouter(log, statusHandler, collector, limiter), nil
}
