package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outcome is one recorded settlement attempt: true for success.
type outcome bool

const (
	ok   outcome = true
	fail outcome = false
)

func record(b *Breaker, outcomes ...outcome) {
	for _, o := range outcomes {
		if o {
			b.RecordSuccess()
		} else {
			b.RecordFailure()
		}
	}
}

func TestBreaker_Transitions(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		outcomes []outcome
		wantOpen bool
	}{
		{"fresh breaker is closed", nil, nil, false},
		{"below failure threshold", []Option{WithFailureThreshold(3)}, []outcome{fail, fail}, false},
		{"reaches failure threshold", []Option{WithFailureThreshold(3)}, []outcome{fail, fail, fail}, true},
		{"success resets failure streak", []Option{WithFailureThreshold(3)}, []outcome{fail, fail, ok, fail, fail}, false},
		{"one success short of closing", []Option{WithFailureThreshold(1), WithSuccessThreshold(2)}, []outcome{fail, ok}, true},
		{"closes after success streak", []Option{WithFailureThreshold(1), WithSuccessThreshold(2)}, []outcome{fail, ok, ok}, false},
		{"failure resets success streak", []Option{WithFailureThreshold(1), WithSuccessThreshold(3)}, []outcome{fail, ok, ok, fail, ok, ok}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("settlement", tt.opts...)
			record(b, tt.outcomes...)
			assert.Equal(t, tt.wantOpen, b.IsOpen())
		})
	}
}

func TestBreaker_ReportsStateChanges(t *testing.T) {
	b := New("settlement", WithFailureThreshold(2))
	assert.Equal(t, "settlement", b.Name())
	assert.Equal(t, StateClosed, b.State())

	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	assert.Equal(t, StateChange{}, change)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened, "already open")

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	b := New("settlement", WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_AllowProbesAfterCooldown(t *testing.T) {
	now := time.Unix(0, 0)
	b := New("settlement", WithFailureThreshold(1), WithCooldown(time.Second), withClock(func() time.Time { return now }))

	assert.True(t, b.Allow())
	b.RecordFailure()
	assert.False(t, b.Allow())

	now = now.Add(time.Second)
	assert.True(t, b.Allow(), "one probe after cooldown")
	assert.False(t, b.Allow(), "only one probe per cooldown")

	b.RecordFailure()
	now = now.Add(500 * time.Millisecond)
	assert.False(t, b.Allow(), "failed probe restarts the cooldown")

	now = now.Add(time.Second)
	require.True(t, b.Allow())
	b.RecordSuccess()
	assert.True(t, b.Allow())
}
