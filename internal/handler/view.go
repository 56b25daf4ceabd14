package handler

import (
	"strings"
	"time"

	"github.com/angeloszaimis/status-page/internal/service"
)

// timestampLayout matches the en-US locale string the page has always shown.
const timestampLayout = "1/2/2006, 3:04:05 PM"

type pageData struct {
	Title     string
	Timestamp string
	Services  []serviceView
}

type statusResponse struct {
	SweepID   string        `json:"sweep_id"`
	Timestamp time.Time     `json:"timestamp"`
	Services  []serviceView `json:"services"`
}

type serviceView struct {
	Name     string         `json:"name"`
	Healthy  bool           `json:"healthy"`
	Proxy    endpointView   `json:"proxy"`
	Backends []endpointView `json:"backends"`
}

type endpointView struct {
	URL    string         `json:"url"`
	Status service.Status `json:"status"`
}

// Class is the CSS class used to colour the status.
func (e endpointView) Class() string {
	return strings.ToLower(string(e.Status))
}

func newEndpointView(r service.CheckResult) endpointView {
	v := endpointView{Status: r.Status}
	if r.URL != nil {
		v.URL = r.URL.String()
	}
	return v
}

func newServiceViews(reports []service.Report) []serviceView {
	views := make([]serviceView, 0, len(reports))

	for _, r := range reports {
		backends := make([]endpointView, 0, len(r.Backends))
		for _, b := range r.Backends {
			backends = append(backends, newEndpointView(b))
		}

		views = append(views, serviceView{
			Name:     r.Group.Name(),
			Healthy:  r.Healthy(),
			Proxy:    newEndpointView(r.Proxy),
			Backends: backends,
		})
	}

	return views
}
