package service

import (
	"net/url"
	"time"
)

// Status is the reachability classification of a single endpoint.
type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// IsUp reports whether the status is UP.
func (s Status) IsUp() bool {
	return s == StatusUp
}

func (s Status) String() string {
	return string(s)
}

// CheckResult is the outcome of probing one URL.
type CheckResult struct {
	URL    *url.URL
	Status Status
}

// Report holds the results for one Group. Backends is aligned with
// Group.Backends() index for index.
type Report struct {
	Group     Group
	Proxy     CheckResult
	Backends  []CheckResult
	CheckedAt time.Time
}

// Healthy reports whether the proxy and every backend are UP.
func (r Report) Healthy() bool {
	if !r.Proxy.Status.IsUp() {
		return false
	}

	for _, b := range r.Backends {
		if !b.Status.IsUp() {
			return false
		}
	}

	return true
}

// UpBackends returns the number of backends classified as UP.
func (r Report) UpBackends() int {
	up := 0
	for _, b := range r.Backends {
		if b.Status.IsUp() {
			up++
		}
	}
	return up
}
