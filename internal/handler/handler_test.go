package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/status-page/internal/handler"
	"github.com/angeloszaimis/status-page/internal/healthcheck"
	"github.com/angeloszaimis/status-page/internal/service"
)

type fakeProber struct {
	mu      sync.Mutex
	calls   int
	groups  []service.Group
	ctx     context.Context
	reports func(groups []service.Group) []service.Report
}

func (f *fakeProber) CheckAll(ctx context.Context, groups []service.Group) []service.Report {
	f.mu.Lock()
	f.calls++
	f.groups = groups
	f.ctx = ctx
	f.mu.Unlock()
	return f.reports(groups)
}

func (f *fakeProber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type sweepRecorder struct {
	mu        sync.Mutex
	durations []time.Duration
}

func (s *sweepRecorder) ObserveSweep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durations = append(s.durations, d)
}

// reportsWith marks the proxy and backends of every group with the given
// statuses, cycling through backendStatuses.
func reportsWith(proxy service.Status, backendStatuses ...service.Status) func([]service.Group) []service.Report {
	return func(groups []service.Group) []service.Report {
		reports := make([]service.Report, 0, len(groups))
		for _, g := range groups {
			r := service.Report{
				Group: g,
				Proxy: service.CheckResult{URL: g.Proxy(), Status: proxy},
			}
			for i, b := range g.Backends() {
				r.Backends = append(r.Backends, service.CheckResult{
					URL:    b,
					Status: backendStatuses[i%len(backendStatuses)],
				})
			}
			reports = append(reports, r)
		}
		return reports
	}
}

var _ = Describe("StatusHandler", func() {
	var (
		log      *slog.Logger
		groups   []service.Group
		prober   *fakeProber
		recorder *sweepRecorder
		h        *handler.StatusHandler
		madrid   *time.Location
		now      time.Time
	)

	BeforeEach(func() {
		log = slog.New(slog.DiscardHandler)

		var err error
		madrid, err = time.LoadLocation("Europe/Madrid")
		Expect(err).NotTo(HaveOccurred())
		now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

		groups = []service.Group{
			mustGroup("Nginx Orion (1026)", "http://nginx-orion:1026/health",
				"http://orion-1:1027/version", "http://orion-2:1028/version"),
			mustGroup("Nginx IoT Agent (7896)", "http://nginx-iot-7896:7896/health",
				"http://iotagent-1:7897/iot/about"),
		}

		prober = &fakeProber{reports: reportsWith(service.StatusUp, service.StatusUp, service.StatusDown)}
		recorder = &sweepRecorder{}
		h = handler.NewStatusHandler(log, prober, groups, recorder,
			handler.WithTitle("Service Status"),
			handler.WithLocation(madrid),
			handler.WithClock(func() time.Time { return now }))
	})

	Describe("ServeHTTP", func() {
		It("should render one row per group in configured order", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/html"))

			body := w.Body.String()
			orion := strings.Index(body, "Nginx Orion (1026)")
			iot := strings.Index(body, "Nginx IoT Agent (7896)")
			Expect(orion).To(BeNumerically(">", 0))
			Expect(iot).To(BeNumerically(">", orion))
		})

		It("should pair every backend with its status", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			body := w.Body.String()
			Expect(body).To(ContainSubstring(`http://orion-1:1027/version: <span class="up">UP</span>`))
			Expect(body).To(ContainSubstring(`http://orion-2:1028/version: <span class="down">DOWN</span>`))
			Expect(body).To(ContainSubstring(`<td class="up">UP</td>`))
		})

		It("should show the timestamp in the configured time zone", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(w.Body.String()).To(ContainSubstring("Timestamp: 10/17/2026, 2:00:00 PM"))
		})

		It("should escape service names", func() {
			groups = []service.Group{mustGroup("<script>alert(1)</script>", "http://p/", "http://b/")}
			h = handler.NewStatusHandler(log, prober, groups, nil)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(w.Body.String()).NotTo(ContainSubstring("<script>"))
			Expect(w.Body.String()).To(ContainSubstring("&lt;script&gt;"))
		})

		It("should probe the configured groups with the request context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))

			Expect(prober.groups).To(Equal(groups))
			Expect(prober.ctx).To(Equal(ctx))
		})

		It("should sweep again on every request", func() {
			for i := 0; i < 3; i++ {
				h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			}
			Expect(prober.Calls()).To(Equal(3))
			Expect(recorder.durations).To(HaveLen(3))
		})

		It("should tag the response with a sweep id", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			_, err := uuid.Parse(w.Header().Get(handler.SweepIDHeader))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("ServeJSON", func() {
		type endpoint struct {
			URL    string `json:"url"`
			Status string `json:"status"`
		}
		type payload struct {
			SweepID   string    `json:"sweep_id"`
			Timestamp time.Time `json:"timestamp"`
			Services  []struct {
				Name     string     `json:"name"`
				Healthy  bool       `json:"healthy"`
				Proxy    endpoint   `json:"proxy"`
				Backends []endpoint `json:"backends"`
			} `json:"services"`
		}

		It("should encode the sweep in order", func() {
			w := httptest.NewRecorder()
			h.ServeJSON(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))

			var p payload
			Expect(json.NewDecoder(w.Body).Decode(&p)).To(Succeed())
			Expect(p.SweepID).To(Equal(w.Header().Get(handler.SweepIDHeader)))
			Expect(p.Timestamp.Equal(now)).To(BeTrue())
			Expect(p.Services).To(HaveLen(2))

			orion := p.Services[0]
			Expect(orion.Name).To(Equal("Nginx Orion (1026)"))
			Expect(orion.Healthy).To(BeFalse())
			Expect(orion.Proxy).To(Equal(endpoint{URL: "http://nginx-orion:1026/health", Status: "UP"}))
			Expect(orion.Backends).To(Equal([]endpoint{
				{URL: "http://orion-1:1027/version", Status: "UP"},
				{URL: "http://orion-2:1028/version", Status: "DOWN"},
			}))

			Expect(p.Services[1].Healthy).To(BeTrue())
		})
	})

	Context("with a real prober", func() {
		var servers []*httptest.Server

		AfterEach(func() {
			for _, s := range servers {
				s.Close()
			}
		})

		serve := func(code int) string {
			s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
			}))
			servers = append(servers, s)
			return s.URL
		}

		It("should render live endpoint status", func() {
			proxy := serve(http.StatusOK)
			healthy := serve(http.StatusOK)
			failing := serve(http.StatusServiceUnavailable)

			live := []service.Group{mustGroup("Live", proxy, healthy, failing)}
			h = handler.NewStatusHandler(log, healthcheck.New(log), live, nil)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			body := w.Body.String()
			Expect(body).To(ContainSubstring(healthy + `: <span class="up">UP</span>`))
			Expect(body).To(ContainSubstring(failing + `: <span class="down">DOWN</span>`))
		})
	})
})

func mustGroup(name, proxy string, backends ...string) service.Group {
	g, err := service.ParseGroup(name, proxy, backends)
	if err != nil {
		panic(err)
	}
	return g
}

