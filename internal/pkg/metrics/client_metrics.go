package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClientMetrics tracks calls the portal client makes to the backend.
type ClientMetrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Unauthorized    prometheus.Counter
	StaleResponses  *prometheus.CounterVec
}

func NewClientMetrics(namespace string, registerer prometheus.Registerer) *ClientMetrics {
	factory := promauto.With(registerer)

	return &ClientMetrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Backend requests by endpoint and status code",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Backend request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		Unauthorized: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "unauthorized_total",
				Help:      "Responses that invalidated the session",
			},
		),
		StaleResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "booking",
				Name:      "stale_responses_total",
				Help:      "Availability responses dropped because a newer request or a reset superseded them",
			},
			[]string{"query"},
		),
	}
}

// ObserveRequest records one finished request. status 0 means no response.
func (m *ClientMetrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

func (m *ClientMetrics) ObserveUnauthorized() {
	if m == nil {
		return
	}
	m.Unauthorized.Inc()
}

func (m *ClientMetrics) ObserveStale(query string) {
	if m == nil {
		return
	}
	m.StaleResponses.WithLabelValues(query).Inc()
}
