// Package gisco is a client for the Eurostat GISCO web services: geocoding
// and reverse geocoding (photon), routing (OSRM) and NUTS region lookup.
package gisco

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// DefaultBaseURL is the GISCO services root.
const DefaultBaseURL = "https://gisco-services.ec.europa.eu"

// Endpoint paths relative to the base URL.
const (
	geocodePath  = "/api"
	reversePath  = "/reverse"
	routePath    = "/route/v1/driving/"
	findNUTSPath = "/nuts/find-nuts.py"
)

// Client talks to the GISCO REST endpoints. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the services root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for all endpoints.
// Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a GISCO client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
		userAgent:  "gisco-cli",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured services root.
func (c *Client) BaseURL() string { return c.baseURL }

// getJSON issues one GET against path and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrapf(err, "gisco: %s rate limit", op)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrapf(err, "gisco: %s build request", op)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geoerr.Transport(err, "gisco: "+op+" request")
	}
	defer resp.Body.Close() //nolint:errcheck

	zap.L().Debug("gisco request",
		zap.String("op", op),
		zap.String("url", reqURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := geoerr.Status(resp.StatusCode, "gisco: "+op); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return geoerr.Transport(err, "gisco: "+op+" read body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return geoerr.Unavailable("gisco: %s parse response: %v", op, err)
	}
	return nil
}
