package healthcheck

import (
	"context"
	"io"
	"net/http"
	"time"
)

// maxDrain bounds how much of a response body is read before closing it,
// so small health payloads still allow connection reuse.
const maxDrain = 64 << 10

// Client performs a single GET request and reports the response status code.
type Client interface {
	Get(ctx context.Context, url string, timeout time.Duration) (int, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, url string, timeout time.Duration) (int, error)

func (f ClientFunc) Get(ctx context.Context, url string, timeout time.Duration) (int, error) {
	return f(ctx, url, timeout)
}

// HTTPClient is the Client used in production. It wraps a plain
// *http.Client; redirects are followed and the timeout covers the whole
// exchange including reading the body.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient returns an HTTPClient backed by hc, or by a client using
// the default transport when hc is nil.
func NewHTTPClient(hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{}
	}

	return &HTTPClient{client: hc}
}

func (c *HTTPClient) Get(ctx context.Context, url string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	// Only the status code matters.
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxDrain))

	return res.StatusCode, nil
}
