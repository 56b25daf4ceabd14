package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/angeloszaimis/status-page/internal/service"
)

// maxSamples bounds the latency window kept per endpoint.
const maxSamples = 1000

type endpointStats struct {
	group      string
	role       string
	probes     int64
	ups        int64
	lastStatus service.Status
	durations  []time.Duration
}

type Metrics struct {
	mutex     sync.RWMutex
	endpoints map[string]*endpointStats
	sweeps    int64
	lastSweep time.Duration
	startTime time.Time
}

type Snapshot struct {
	TotalProbes int64                      `json:"total_probes"`
	TotalSweeps int64                      `json:"total_sweeps"`
	LastSweep   time.Duration              `json:"last_sweep"`
	Uptime      time.Duration              `json:"uptime"`
	Endpoints   map[string]EndpointMetrics `json:"endpoints"`
}

type EndpointMetrics struct {
	Group      string         `json:"group"`
	Role       string         `json:"role"`
	Probes     int64          `json:"probes"`
	Ups        int64          `json:"ups"`
	LastStatus service.Status `json:"last_status"`
	AvgLatency time.Duration  `json:"avg_latency"`
	P50Latency time.Duration  `json:"p50_latency"`
	P95Latency time.Duration  `json:"p95_latency"`
	P99Latency time.Duration  `json:"p99_latency"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		endpoints: make(map[string]*endpointStats),
		startTime: time.Now(),
	}
}

func (m *Metrics) RecordProbe(url, group, role string, status service.Status, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stats, ok := m.endpoints[url]
	if !ok {
		stats = &endpointStats{group: group, role: role}
		m.endpoints[url] = stats
	}

	stats.probes++
	if status.IsUp() {
		stats.ups++
	}
	stats.lastStatus = status

	stats.durations = append(stats.durations, duration)
	if len(stats.durations) > maxSamples {
		stats.durations = stats.durations[1:]
	}
}

func (m *Metrics) RecordSweep(duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sweeps++
	m.lastSweep = duration
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		TotalSweeps: m.sweeps,
		LastSweep:   m.lastSweep,
		Uptime:      time.Since(m.startTime),
		Endpoints:   make(map[string]EndpointMetrics, len(m.endpoints)),
	}

	for url, stats := range m.endpoints {
		snap.TotalProbes += stats.probes

		em := EndpointMetrics{
			Group:      stats.group,
			Role:       stats.role,
			Probes:     stats.probes,
			Ups:        stats.ups,
			LastStatus: stats.lastStatus,
		}

		if len(stats.durations) > 0 {
			sorted := make([]time.Duration, len(stats.durations))
			copy(sorted, stats.durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			em.AvgLatency = average(sorted)
			em.P50Latency = percentile(sorted, 0.50)
			em.P95Latency = percentile(sorted, 0.95)
			em.P99Latency = percentile(sorted, 0.99)
		}

		snap.Endpoints[url] = em
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
