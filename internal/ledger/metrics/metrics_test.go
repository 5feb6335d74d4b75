package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RegisterOnIsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CreditsIssued.Add(100)
	m.CreditsRetired.Add(5)
	m.ObserveOperation("purchase", time.Now())
	m.IncrementOperationError("purchase", "settlement_failure")

	assert.InDelta(t, 100, testutil.ToFloat64(m.CreditsIssued), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(m.CreditsRetired), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.OperationErrors.WithLabelValues("purchase", "settlement_failure")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	// a second registry accepts the same names
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}
