package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offsetledger/pkg/platform/audit/store/postgres"
)

type fakeOutbox struct {
	entries []postgres.Entry
	marked  []uuid.UUID
}

func (f *fakeOutbox) Pending(_ context.Context, limit int) ([]postgres.Entry, error) {
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	f.marked = append(f.marked, ids...)
	return nil
}

type fakeProducer struct {
	failAt int
	keys   []string
}

func (f *fakeProducer) Produce(_ context.Context, _ string, key, _ []byte) error {
	if f.failAt >= 0 && len(f.keys) == f.failAt {
		return errors.New("broker unavailable")
	}
	f.keys = append(f.keys, string(key))
	return nil
}

func entries(n int) []postgres.Entry {
	out := make([]postgres.Entry, n)
	for i := range out {
		out[i] = postgres.Entry{ID: uuid.New(), AggregateID: string(rune('a' + i)), Payload: []byte(`{}`)}
	}
	return out
}

func TestRelayOnce_PublishesAndMarks(t *testing.T) {
	outbox := &fakeOutbox{entries: entries(3)}
	producer := &fakeProducer{failAt: -1}
	relay := NewOutboxRelay(outbox, producer, "ledger.audit")

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"a", "b", "c"}, producer.keys)
	assert.Len(t, outbox.marked, 3)
}

func TestRelayOnce_StopsAtFirstFailure(t *testing.T) {
	outbox := &fakeOutbox{entries: entries(3)}
	producer := &fakeProducer{failAt: 1}
	relay := NewOutboxRelay(outbox, producer, "ledger.audit")

	n, err := relay.RelayOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uuid.UUID{outbox.entries[0].ID}, outbox.marked)
}

func TestRelayOnce_RespectsBatchSize(t *testing.T) {
	outbox := &fakeOutbox{entries: entries(5)}
	producer := &fakeProducer{failAt: -1}
	relay := NewOutboxRelay(outbox, producer, "ledger.audit", WithBatchSize(2))

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	relay := NewOutboxRelay(&fakeOutbox{}, &fakeProducer{failAt: -1}, "t")
	assert.ErrorIs(t, relay.Run(ctx), context.Canceled)
}
