package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

const defaultTimeout = 30 * time.Second

// httpBackend holds the transport shared by the HTTP providers.
type httpBackend struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

func newHTTPBackend(hc *http.Client, rps float64, userAgent string) httpBackend {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return httpBackend{
		httpClient: hc,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		userAgent:  userAgent,
	}
}

// getJSON issues a single GET and decodes the body into out.
func (b httpBackend) getJSON(ctx context.Context, op, reqURL string, out any) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return eris.Wrapf(err, "geocode: %s rate limit", op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrapf(err, "geocode: %s build request", op)
	}
	req.Header.Set("Accept", "application/json")
	if b.userAgent != "" {
		req.Header.Set("User-Agent", b.userAgent)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return geoerr.Transport(err, "geocode: "+op+" request")
	}
	defer resp.Body.Close() //nolint:errcheck

	zap.L().Debug("geocode request", zap.String("op", op), zap.Int("status", resp.StatusCode))

	if err := geoerr.Status(resp.StatusCode, "geocode: "+op); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return geoerr.Transport(err, "geocode: "+op+" read body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return geoerr.Unavailable("geocode: %s parse response: %v", op, err)
	}
	return nil
}
