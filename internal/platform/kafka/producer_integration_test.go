//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"offsetledger/pkg/testutil/containers"
)

func TestProducer_RoundTrip(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	p, err := NewProducer([]string{rp.Broker})
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Health(ctx))
	require.NoError(t, p.EnsureTopic(ctx, "ledger.audit", 1, 1))
	require.NoError(t, p.EnsureTopic(ctx, "ledger.audit", 1, 1), "second call is a no-op")
	require.NoError(t, p.Produce(ctx, "ledger.audit", []byte("7"), []byte(`{"action":"credits_retired"}`)))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics("ledger.audit"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, "7", string(records[0].Key))
}
