package geocode

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/sells-group/gisco-cli/internal/geo"
)

// newTestLimiter creates a rate limiter that effectively does not limit for tests.
func newTestLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

// newTestBackend returns an unthrottled backend using hc.
func newTestBackend(hc *http.Client) httpBackend {
	return httpBackend{httpClient: hc, limiter: newTestLimiter(), userAgent: "gisco-cli-test"}
}

// newRewriteClient creates an HTTP client that rewrites requests to a test server URL.
// All requests matching the target prefix are redirected to the test server.
func newRewriteClient(testServerURL, targetPrefix string) *http.Client {
	return &http.Client{
		Transport: &rewriteTransport{
			base:         http.DefaultTransport,
			testServer:   testServerURL,
			targetPrefix: targetPrefix,
		},
	}
}

type rewriteTransport struct {
	base         http.RoundTripper
	testServer   string
	targetPrefix string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	origURL := req.URL.String()
	if strings.HasPrefix(origURL, t.targetPrefix) {
		suffix := origURL[len(t.targetPrefix):]
		newURL := t.testServer + suffix
		newReq := req.Clone(req.Context())
		parsed, err := req.URL.Parse(newURL)
		if err != nil {
			return nil, err
		}
		newReq.URL = parsed
		newReq.Host = parsed.Host
		return t.base.RoundTrip(newReq)
	}
	return t.base.RoundTrip(req)
}

// mockProvider is a scripted Forwarder and Reverser.
type mockProvider struct {
	name    string
	forward []Candidate
	reverse []Candidate
	err     error
	calls   atomic.Int32

	mu      sync.Mutex
	queries []string
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Forward(_ context.Context, place string) ([]Candidate, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.queries = append(m.queries, place)
	m.mu.Unlock()
	return m.forward, m.err
}

func (m *mockProvider) Reverse(_ context.Context, _ geo.Coordinate) ([]Candidate, error) {
	m.calls.Add(1)
	return m.reverse, m.err
}

// forwardOnly implements Forwarder but not Reverser.
type forwardOnly struct{ inner *mockProvider }

func (f forwardOnly) Name() string { return "forward-only" }

func (f forwardOnly) Forward(ctx context.Context, place string) ([]Candidate, error) {
	return f.inner.Forward(ctx, place)
}
