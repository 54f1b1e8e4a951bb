package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// Metrics holds the API and upstream collectors.
type Metrics struct {
	Requests         *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	UpstreamCalls    *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gisco_http_requests_total",
			Help: "API requests by route and status code",
		}, []string{"route", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gisco_http_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		UpstreamCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gisco_upstream_calls_total",
			Help: "Geocoding provider calls by provider, operation and error kind",
		}, []string{"provider", "op", "kind"}),
		UpstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gisco_upstream_call_duration_seconds",
			Help:    "Geocoding provider call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "op"}),
	}
}

// ObserveUpstream records one provider call. Its signature matches
// geocode.Observer.
func (m *Metrics) ObserveUpstream(provider, op string, elapsed time.Duration, err error) {
	kind := "ok"
	if err != nil {
		kind = string(geoerr.KindOf(err))
	}
	m.UpstreamCalls.WithLabelValues(provider, op, kind).Inc()
	m.UpstreamDuration.WithLabelValues(provider, op).Observe(elapsed.Seconds())
}

// middleware records request counts and latency by chi route pattern.
func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
