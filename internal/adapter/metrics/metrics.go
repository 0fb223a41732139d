package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"adfleet/internal/core/port"
)

var _ port.Recorder = (*Recorder)(nil)

// Recorder exposes inventory and HTTP metrics to Prometheus.
type Recorder struct {
	claims        *prometheus.CounterVec
	verifications *prometheus.CounterVec
	retired       prometheus.Counter
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adfleet_banner_claims_total",
			Help: "Banner claim attempts by outcome",
		}, []string{"outcome"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adfleet_verifications_total",
			Help: "Photo verification attempts by result",
		}, []string{"result"}),
		retired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adfleet_banners_retired_total",
			Help: "Banners moved to completed by campaign close-out",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adfleet_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adfleet_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(r.claims, r.verifications, r.retired, r.requests, r.latency)
	return r
}

func (r *Recorder) ClaimObserved(outcome string) {
	r.claims.WithLabelValues(outcome).Inc()
}

func (r *Recorder) VerificationObserved(verified bool) {
	result := "rejected"
	if verified {
		result = "verified"
	}
	r.verifications.WithLabelValues(result).Inc()
}

func (r *Recorder) BannersRetired(n int) {
	if n > 0 {
		r.retired.Add(float64(n))
	}
}

// Middleware counts requests by their chi route pattern.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.requests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.latency.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}
