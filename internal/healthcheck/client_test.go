package healthcheck_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/status-page/internal/healthcheck"
)

var _ = Describe("HTTPClient", func() {
	var (
		client  *healthcheck.HTTPClient
		server  *httptest.Server
		release chan struct{}
	)

	BeforeEach(func() {
		client = healthcheck.NewHTTPClient(nil)
		release = make(chan struct{})

		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.HandleFunc("/unavailable", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/health", http.StatusFound)
		})
		mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
		})
		server = httptest.NewServer(mux)
	})

	AfterEach(func() {
		close(release)
		server.Close()
	})

	It("should report the status code of a healthy endpoint", func() {
		code, err := client.Get(context.Background(), server.URL+"/health", time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(http.StatusOK))
	})

	It("should report non-200 status codes without an error", func() {
		code, err := client.Get(context.Background(), server.URL+"/unavailable", time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(http.StatusServiceUnavailable))
	})

	It("should follow redirects", func() {
		code, err := client.Get(context.Background(), server.URL+"/moved", time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(http.StatusOK))
	})

	It("should fail once the timeout elapses", func() {
		start := time.Now()
		_, err := client.Get(context.Background(), server.URL+"/slow", 100*time.Millisecond)
		Expect(err).To(HaveOccurred())
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})

	It("should fail for a refused connection", func() {
		closed := httptest.NewServer(http.NotFoundHandler())
		addr := closed.URL
		closed.Close()

		_, err := client.Get(context.Background(), addr, time.Second)
		Expect(err).To(HaveOccurred())
	})

	It("should fail for an invalid URL", func() {
		_, err := client.Get(context.Background(), "http://[::1", time.Second)
		Expect(err).To(HaveOccurred())
	})

	It("should use the wrapped http.Client", func() {
		var used bool
		hc := &http.Client{
			Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				used = true
				return http.DefaultTransport.RoundTrip(r)
			}),
		}

		code, err := healthcheck.NewHTTPClient(hc).Get(context.Background(), server.URL+"/health", time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(http.StatusOK))
		Expect(used).To(BeTrue())
	})
})

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
