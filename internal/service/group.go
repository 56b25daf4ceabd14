package service

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	ErrEmptyName  = errors.New("service name cannot be empty")
	ErrNoBackends = errors.New("service must have at least one backend")
	ErrInvalidURL = errors.New("invalid endpoint URL")
)

// Group is a named service with one proxy endpoint and its backends.
// A Group is immutable once built; accessors hand out copies of the
// backend list so callers cannot reorder it.
type Group struct {
	name     string
	proxy    *url.URL
	backends []*url.URL
}

// NewGroup creates a Group from already parsed URLs.
func NewGroup(name string, proxy *url.URL, backends []*url.URL) Group {
	b := make([]*url.URL, len(backends))
	copy(b, backends)

	return Group{
		name:     name,
		proxy:    proxy,
		backends: b,
	}
}

// ParseGroup parses and validates the proxy and backend URLs of a group.
// Every URL must be absolute with an http or https scheme.
func ParseGroup(name, proxy string, backends []string) (Group, error) {
	if name == "" {
		return Group{}, ErrEmptyName
	}

	if len(backends) == 0 {
		return Group{}, fmt.Errorf("%s: %w", name, ErrNoBackends)
	}

	proxyURL, err := ParseEndpoint(proxy)
	if err != nil {
		return Group{}, fmt.Errorf("%s proxy: %w", name, err)
	}

	backendURLs := make([]*url.URL, 0, len(backends))
	for i, raw := range backends {
		u, err := ParseEndpoint(raw)
		if err != nil {
			return Group{}, fmt.Errorf("%s backend %d: %w", name, i, err)
		}
		backendURLs = append(backendURLs, u)
	}

	return Group{
		name:     name,
		proxy:    proxyURL,
		backends: backendURLs,
	}, nil
}

// ParseEndpoint parses rawURL and checks that it is an absolute http(s) URL.
func ParseEndpoint(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return u, nil
}

// Name returns the display name of the group.
func (g Group) Name() string {
	return g.name
}

// Proxy returns the proxy endpoint.
func (g Group) Proxy() *url.URL {
	return g.proxy
}

// Backends returns the backend endpoints in configured order.
func (g Group) Backends() []*url.URL {
	b := make([]*url.URL, len(g.backends))
	copy(b, g.backends)
	return b
}

// Endpoints returns the proxy followed by every backend.
func (g Group) Endpoints() []*url.URL {
	endpoints := make([]*url.URL, 0, len(g.backends)+1)
	endpoints = append(endpoints, g.proxy)
	return append(endpoints, g.backends...)
}
