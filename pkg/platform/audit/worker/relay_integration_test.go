//go:build integration

package worker

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offsetledger/internal/platform/kafka"
	audit "offsetledger/pkg/platform/audit"
	"offsetledger/pkg/platform/audit/store/postgres"
	"offsetledger/pkg/testutil/containers"
)

func TestOutboxRelay_EndToEnd(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	rp := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", pg.DSN)
	require.NoError(t, err)
	defer db.Close()

	outbox := postgres.New(db)
	publisher := audit.NewPublisher(outbox)
	for i := range 3 {
		require.NoError(t, publisher.Emit(ctx, audit.Event{
			Action:       string(audit.EventCreditsRetired),
			Actor:        "alice",
			InitiativeID: 1,
			Quantity:     uint64(i + 1),
		}))
	}

	producer, err := kafka.NewProducer([]string{rp.Broker})
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, producer.EnsureTopic(ctx, "ledger.audit", 1, 1))

	relay := NewOutboxRelay(outbox, producer, "ledger.audit")
	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	pending, err := outbox.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
