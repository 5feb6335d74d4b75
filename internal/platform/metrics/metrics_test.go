package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("/batches/{id}", http.MethodGet, http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/x", http.MethodPost, http.StatusCreated, time.Second)
		m.IncrementIdempotentReplays()
		m.IncrementIdempotencyErrors()
	})
}

func TestIdempotencyCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncrementIdempotentReplays()
	m.IncrementIdempotentReplays()
	m.IncrementIdempotencyErrors()

	assert.InDelta(t, 2, testutil.ToFloat64(m.IdempotentReplays), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.IdempotencyErrors), 0)
}
