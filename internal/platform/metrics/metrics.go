package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP transport metrics.
type Metrics struct {
	RequestDuration   *prometheus.HistogramVec
	IdempotentReplays prometheus.Counter
	IdempotencyErrors prometheus.Counter
}

// New creates and registers the transport metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "offsetledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		IdempotentReplays: f.NewCounter(prometheus.CounterOpts{
			Name: "offsetledger_http_idempotent_replays_total",
			Help: "Responses served from the Idempotency-Key cache",
		}),
		IdempotencyErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "offsetledger_http_idempotency_errors_total",
			Help: "Idempotency cache failures that let a request through uncached",
		}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) IncrementIdempotentReplays() {
	if m == nil {
		return
	}
	m.IdempotentReplays.Inc()
}

func (m *Metrics) IncrementIdempotencyErrors() {
	if m == nil {
		return
	}
	m.IdempotencyErrors.Inc()
}
