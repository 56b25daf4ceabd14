// Package metrics collects operational telemetry about probe sweeps.
//
// It uses a channel-based event pipeline so the prober never waits on
// bookkeeping. Per endpoint it tracks:
//   - Probe and UP counts
//   - The most recent classification
//   - Probe latency with percentile calculations (P50, P95, P99)
//
// The same events feed a dedicated Prometheus registry.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	prober := healthcheck.New(logger, healthcheck.WithObserver(collector))
//
//	// JSON snapshot and Prometheus exposition
//	mux.Handle("/metrics.json", collector.Handler())
//	mux.Handle("/metrics", collector.PrometheusHandler())
//
// The figures are never read back by the prober or the dashboard.
package metrics
