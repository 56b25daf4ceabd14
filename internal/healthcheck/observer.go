package healthcheck

import (
	"time"

	"github.com/angeloszaimis/status-page/internal/service"
)

// Role tells whether a probed endpoint is the proxy or a backend of its group.
type Role string

const (
	RoleProxy   Role = "proxy"
	RoleBackend Role = "backend"
)

// ProbeEvent describes one completed probe. Err carries the cause of a DOWN
// classification and is nil for UP.
type ProbeEvent struct {
	Group    string
	Role     Role
	URL      string
	Status   service.Status
	Duration time.Duration
	Err      error
}

// Observer receives an event for every probe. Implementations must not block.
type Observer interface {
	ObserveProbe(event ProbeEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event ProbeEvent)

func (f ObserverFunc) ObserveProbe(event ProbeEvent) {
	f(event)
}
