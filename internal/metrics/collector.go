package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angeloszaimis/status-page/internal/healthcheck"
	"github.com/angeloszaimis/status-page/internal/service"
)

type EventType string

const (
	EventProbeCompleted EventType = "probe_completed"
	EventSweepCompleted EventType = "sweep_completed"
)

type MetricEvent struct {
	Type      EventType
	Timestamp time.Time
	URL       string
	Group     string
	Role      string
	Status    service.Status
	Duration  time.Duration
}

type Collector struct {
	eventCh  chan MetricEvent
	metrics  *Metrics
	logger   *slog.Logger
	registry *prometheus.Registry

	probesTotal   *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	endpointUp    *prometheus.GaugeVec
	sweepDuration prometheus.Histogram
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	c := &Collector{
		eventCh:  make(chan MetricEvent, bufferSize),
		metrics:  NewMetrics(),
		logger:   logger,
		registry: prometheus.NewRegistry(),

		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "status_page_probes_total",
				Help: "Total number of endpoint probes by role and classification",
			},
			[]string{"role", "status"},
		),
		probeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "status_page_probe_duration_seconds",
				Help:    "Probe duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 1.5, 2, 2.5},
			},
			[]string{"role"},
		),
		endpointUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "status_page_endpoint_up",
				Help: "Result of the most recent probe (1 = UP, 0 = DOWN)",
			},
			[]string{"group", "role", "url"},
		),
		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "status_page_sweep_duration_seconds",
				Help:    "Duration of a full dashboard sweep in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	c.registry.MustRegister(
		c.probesTotal,
		c.probeDuration,
		c.endpointUp,
		c.sweepDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

// ObserveProbe forwards a probe result into the pipeline. It drops the
// event when the buffer is full.
func (c *Collector) ObserveProbe(e healthcheck.ProbeEvent) {
	c.emit(MetricEvent{
		Type:      EventProbeCompleted,
		Timestamp: time.Now(),
		URL:       e.URL,
		Group:     e.Group,
		Role:      string(e.Role),
		Status:    e.Status,
		Duration:  e.Duration,
	})
}

// ObserveSweep records the duration of a complete CheckAll run.
func (c *Collector) ObserveSweep(duration time.Duration) {
	c.emit(MetricEvent{
		Type:      EventSweepCompleted,
		Timestamp: time.Now(),
		Duration:  duration,
	})
}

func (c *Collector) emit(event MetricEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Debug("Metrics buffer full, dropping event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventProbeCompleted:
		c.probesTotal.WithLabelValues(event.Role, string(event.Status)).Inc()
		c.probeDuration.WithLabelValues(event.Role).Observe(event.Duration.Seconds())

		up := 0.0
		if event.Status.IsUp() {
			up = 1
		}
		c.endpointUp.WithLabelValues(event.Group, event.Role, event.URL).Set(up)

		c.metrics.RecordProbe(event.URL, event.Group, event.Role, event.Status, event.Duration)

	case EventSweepCompleted:
		c.sweepDuration.Observe(event.Duration.Seconds())
		c.metrics.RecordSweep(event.Duration)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}

// Registry exposes the Prometheus registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
