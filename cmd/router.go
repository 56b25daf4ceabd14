package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/angeloszaimis/status-page/internal/handler"
	"github.com/angeloszaimis/status-page/internal/metrics"
)

func setupRouter(log *slog.Logger, statusHandler *handler.StatusHandler, collector *metrics.Collector, limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Every dashboard request triggers a full sweep.
	r.Group(func(r chi.Router) {
		r.Use(handler.RateLimit(limiter, log))

		r.Get("/", statusHandler.ServeHTTP)
		r.With(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		})).Get("/api/status", statusHandler.ServeJSON)
	})

	r.Handle("/metrics", collector.PrometheusHandler())
	r.Get("/metrics.json", collector.Handler())

	return r
}
