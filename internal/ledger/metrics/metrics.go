package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Metrics provides observability for the ledger module.
// Credit counters move with committed operations only.
type Metrics struct {
	CreditsIssued      prometheus.Counter
	CreditsBatched     prometheus.Counter
	CreditsPurchased   prometheus.Counter
	CreditsTransferred prometheus.Counter
	CreditsRetired     prometheus.Counter
	SettlementFailures prometheus.Counter
	OperationDuration  *prometheus.HistogramVec
	OperationErrors    *prometheus.CounterVec
}

// New registers the ledger metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CreditsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "offsetledger_credits_issued_total",
			Help: "Credits minted by recorded verifications",
		}),
		CreditsBatched: f.NewCounter(prometheus.CounterOpts{
			Name: "offsetledger_credits_batched_total",
			Help: "Credits moved from initiative supply into batches",
		}),
		CreditsPurchased: f.NewCounter(prometheus.CounterOpts{
			Name: "offsetledger_credits_purchased_total",
			Help: "Credits bought out of batches",
		}),
		CreditsTransferred: f.NewCounter(prometheus.CounterOpts{
			Name: "offsetledger_credits_transferred_total",
			Help: "Credits moved between holders",
		}),
		CreditsRetired: f.NewCounter(prometheus.CounterOpts{
			Name: "offsetledger_credits_retired_total",
			Help: "Credits permanently retired",
		}),
		SettlementFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "offsetledger_settlement_failures_total",
			Help: "Purchases rejected because payment settlement failed",
		}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "offsetledger_operation_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: durationBuckets,
		}, []string{"operation"}),
		OperationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "offsetledger_operation_errors_total",
			Help: "Failed ledger operations by error code",
		}, []string{"operation", "code"}),
	}
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// IncrementOperationError counts a failed operation.
func (m *Metrics) IncrementOperationError(operation, code string) {
	m.OperationErrors.WithLabelValues(operation, code).Inc()
}
