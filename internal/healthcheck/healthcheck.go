package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/angeloszaimis/status-page/internal/service"
)

// Timeout bounds every probe, from dialing to reading the response.
const Timeout = 2000 * time.Millisecond

var (
	errNilURL  = errors.New("nil url")
	errTimeout = errors.New("probe timed out")
)

// Prober checks endpoints and classifies them as UP or DOWN.
type Prober struct {
	client   Client
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Prober.
type Option func(*Prober)

// WithClient replaces the HTTP client used for probes.
func WithClient(c Client) Option {
	return func(p *Prober) {
		p.client = c
	}
}

// WithObserver registers an Observer notified after every probe.
func WithObserver(o Observer) Option {
	return func(p *Prober) {
		p.observer = o
	}
}

// WithClock overrides the clock used to stamp reports.
func WithClock(now func() time.Time) Option {
	return func(p *Prober) {
		p.now = now
	}
}

// New creates a Prober. Without options it probes through NewHTTPClient(nil).
func New(logger *slog.Logger, opts ...Option) *Prober {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Prober{
		client: NewHTTPClient(nil),
		logger: logger,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

type target struct {
	group string
	role  Role
	url   *url.URL
}

// CheckHealth probes u once and returns UP iff it answered 200 within Timeout.
func (p *Prober) CheckHealth(ctx context.Context, u *url.URL) service.Status {
	return p.probe(ctx, target{url: u}).Status
}

// CheckGroup probes the proxy and every backend of g concurrently and waits
// for all of them. Report.Backends is aligned with g.Backends().
func (p *Prober) CheckGroup(ctx context.Context, g service.Group) service.Report {
	checkedAt := p.now().UTC()

	backends := g.Backends()
	targets := make([]target, 0, len(backends)+1)
	targets = append(targets, target{group: g.Name(), role: RoleProxy, url: g.Proxy()})
	for _, b := range backends {
		targets = append(targets, target{group: g.Name(), role: RoleBackend, url: b})
	}

	mapper := iter.Mapper[target, service.CheckResult]{MaxGoroutines: len(targets)}
	results := mapper.Map(targets, func(t *target) service.CheckResult {
		return p.probe(ctx, *t)
	})

	return service.Report{
		Group:     g,
		Proxy:     results[0],
		Backends:  results[1:],
		CheckedAt: checkedAt,
	}
}

// CheckAll checks every group concurrently and returns one report per group
// in input order. Each call performs fresh probes.
func (p *Prober) CheckAll(ctx context.Context, groups []service.Group) []service.Report {
	if len(groups) == 0 {
		return []service.Report{}
	}

	mapper := iter.Mapper[service.Group, service.Report]{MaxGoroutines: len(groups)}
	return mapper.Map(groups, func(g *service.Group) service.Report {
		return p.CheckGroup(ctx, *g)
	})
}

func (p *Prober) probe(ctx context.Context, t target) service.CheckResult {
	start := time.Now()
	err := p.get(ctx, t.url)
	duration := time.Since(start)

	status := service.StatusUp
	if err != nil {
		status = service.StatusDown
	}

	rawURL := ""
	if t.url != nil {
		rawURL = t.url.String()
	}

	if err != nil {
		p.logger.Debug("Endpoint is down",
			slog.String("group", t.group),
			slog.String("role", string(t.role)),
			slog.String("url", rawURL),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
	}

	if p.observer != nil {
		p.observer.ObserveProbe(ProbeEvent{
			Group:    t.group,
			Role:     t.role,
			URL:      rawURL,
			Status:   status,
			Duration: duration,
			Err:      err,
		})
	}

	return service.CheckResult{URL: t.url, Status: status}
}

type getResult struct {
	code int
	err  error
}

// get returns nil iff the endpoint answered 200. It never waits longer than
// Timeout, even when the Client ignores its context.
func (p *Prober) get(ctx context.Context, u *url.URL) error {
	if u == nil {
		return errNilURL
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	done := make(chan getResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- getResult{err: fmt.Errorf("client panic: %v", r)}
			}
		}()

		code, err := p.client.Get(ctx, u.String(), Timeout)
		done <- getResult{code: code, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return res.err
		}
		if res.code != http.StatusOK {
			return fmt.Errorf("unexpected status %d", res.code)
		}
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errTimeout
		}
		return ctx.Err()
	}
}
