package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/martin5169/financial-dashboard/internal/infrastructure/metrics"
)

// MetricsMiddleware records HTTP metrics.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Wrap wraps an http.Handler with request metrics.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.metrics.HTTPInFlight.Inc()
		defer m.metrics.HTTPInFlight.Dec()

		// Wrap response writer to capture status code
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		m.metrics.ObserveHTTPRequest(r.Method, normalizePath(r.URL.Path), wrapped.statusCode, time.Since(start))
	})
}

var idResources = map[string]bool{
	"accounts":     true,
	"transactions": true,
	"payments":     true,
}

var fixedSubpaths = map[string]bool{
	"totals":   true,
	"balances": true,
}

// normalizePath replaces record ids with :id to keep label cardinality low.
// /api/v1/payments/<id>/pay -> /api/v1/payments/:id/pay
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if !idResources[parts[i]] {
			continue
		}
		next := parts[i+1]
		if next != "" && !fixedSubpaths[next] {
			parts[i+1] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
