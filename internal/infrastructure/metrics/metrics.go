package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

const namespace = "findash"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Service metrics
	ServiceOperations *prometheus.CounterVec
	ServiceFailures   *prometheus.CounterVec
	ServiceDuration   *prometheus.HistogramVec
	ScopeResolutions  *prometheus.CounterVec

	// Data service metrics
	DataRequests *prometheus.CounterVec
	DataDuration *prometheus.HistogramVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Idempotency metrics
	IdempotencyReplays prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Service metrics
		ServiceOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "service_operations_total",
				Help:      "Total number of entity service operations",
			},
			[]string{"entity", "operation", "outcome"},
		),
		ServiceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "service_failures_total",
				Help:      "Entity service operations that failed, including failures hidden from callers",
			},
			[]string{"entity", "operation"},
		),
		ServiceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "service_duration_seconds",
				Help:      "Duration of entity service operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity", "operation"},
		),
		ScopeResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scope_resolutions_total",
				Help:      "User scope resolutions by kind",
			},
			[]string{"scope"},
		),

		// Data service metrics
		DataRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "data_requests_total",
				Help:      "Requests sent to the hosted data service",
			},
			[]string{"method", "resource", "status"},
		),
		DataDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "data_request_duration_seconds",
				Help:      "Round trip time of hosted data service requests",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "resource"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),

		// Idempotency metrics
		IdempotencyReplays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotency_replays_total",
			Help:      "Responses served from the idempotency store",
		}),
	}
}

// ObserveOperation records the outcome of an entity service operation.
func (m *Metrics) ObserveOperation(entity, operation string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		m.ServiceFailures.WithLabelValues(entity, operation).Inc()
	}
	m.ServiceOperations.WithLabelValues(entity, operation, outcome).Inc()
	m.ServiceDuration.WithLabelValues(entity, operation).Observe(duration.Seconds())
}

// ObserveScope counts guest and authenticated resolutions.
func (m *Metrics) ObserveScope(scope domain.UserScope) {
	m.ScopeResolutions.WithLabelValues(scope.String()).Inc()
}

// ObserveDataRequest records one hosted data service round trip. A status of
// zero means the request never got a response.
func (m *Metrics) ObserveDataRequest(method, resource string, status int, duration time.Duration) {
	m.DataRequests.WithLabelValues(method, resource, statusLabel(status)).Inc()
	m.DataDuration.WithLabelValues(method, resource).Observe(duration.Seconds())
}

// ObserveHTTPRequest records one served HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, statusLabel(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
