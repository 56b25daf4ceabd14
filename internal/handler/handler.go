package handler

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angeloszaimis/status-page/internal/service"
)

//go:embed templates/status.html
var templateFS embed.FS

var statusPage = template.Must(template.ParseFS(templateFS, "templates/status.html"))

// SweepIDHeader carries the identifier logged for the sweep behind a response.
const SweepIDHeader = "X-Sweep-ID"

// Prober runs one probe sweep over a set of service groups.
type Prober interface {
	CheckAll(ctx context.Context, groups []service.Group) []service.Report
}

// SweepObserver is notified with the duration of every completed sweep.
type SweepObserver interface {
	ObserveSweep(duration time.Duration)
}

type StatusHandler struct {
	logger   *slog.Logger
	prober   Prober
	groups   []service.Group
	observer SweepObserver
	title    string
	location *time.Location
	now      func() time.Time
}

// Option configures a StatusHandler.
type Option func(*StatusHandler)

// WithTitle sets the page heading.
func WithTitle(title string) Option {
	return func(h *StatusHandler) {
		h.title = title
	}
}

// WithLocation sets the time zone the page timestamp is displayed in.
func WithLocation(loc *time.Location) Option {
	return func(h *StatusHandler) {
		h.location = loc
	}
}

// WithClock overrides the clock used for the page timestamp.
func WithClock(now func() time.Time) Option {
	return func(h *StatusHandler) {
		h.now = now
	}
}

func NewStatusHandler(logger *slog.Logger, prober Prober, groups []service.Group, observer SweepObserver, opts ...Option) *StatusHandler {
	g := make([]service.Group, len(groups))
	copy(g, groups)

	h := &StatusHandler{
		logger:   logger,
		prober:   prober,
		groups:   g,
		observer: observer,
		title:    "Service Status",
		location: time.UTC,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// ServeHTTP renders the status table as HTML.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sweepID, startedAt, reports := h.sweep(w, r)

	data := pageData{
		Title:     h.title,
		Timestamp: startedAt.In(h.location).Format(timestampLayout),
		Services:  newServiceViews(reports),
	}

	var buf bytes.Buffer
	if err := statusPage.Execute(&buf, data); err != nil {
		h.logger.Error("Failed to render status page",
			slog.String("sweep_id", sweepID),
			slog.Any("err", err))
		http.Error(w, "failed to render status page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ServeJSON renders the same sweep as JSON.
func (h *StatusHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	sweepID, startedAt, reports := h.sweep(w, r)

	resp := statusResponse{
		SweepID:   sweepID,
		Timestamp: startedAt.UTC(),
		Services:  newServiceViews(reports),
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode status",
			slog.String("sweep_id", sweepID),
			slog.Any("err", err))
	}
}

func (h *StatusHandler) sweep(w http.ResponseWriter, r *http.Request) (string, time.Time, []service.Report) {
	sweepID := uuid.NewString()
	w.Header().Set(SweepIDHeader, sweepID)

	h.logger.Info("Received request",
		slog.String("sweep_id", sweepID),
		slog.String("from", extractClientIP(r)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("user_agent", r.UserAgent()))

	startedAt := h.now()
	start := time.Now()
	reports := h.prober.CheckAll(r.Context(), h.groups)
	duration := time.Since(start)

	if h.observer != nil {
		h.observer.ObserveSweep(duration)
	}

	up, down := countEndpoints(reports)
	h.logger.Info("Sweep completed",
		slog.String("sweep_id", sweepID),
		slog.Int("groups", len(reports)),
		slog.Int("up", up),
		slog.Int("down", down),
		slog.Duration("duration", duration))

	return sweepID, startedAt, reports
}

func countEndpoints(reports []service.Report) (up, down int) {
	for _, r := range reports {
		backendsUp := r.UpBackends()
		up += backendsUp
		down += len(r.Backends) - backendsUp

		if r.Proxy.Status.IsUp() {
			up++
		} else {
			down++
		}
	}
	return up, down
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}
