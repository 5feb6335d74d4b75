package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offsetledger/pkg/platform/audit"
	"offsetledger/pkg/platform/audit/store/memory"
)

func TestPublisher_EmitStampsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	p := audit.NewPublisher(store)

	err := p.Emit(context.Background(), audit.Event{
		Action:   string(audit.EventCreditsRetired),
		Actor:    "alice",
		Quantity: 40,
	})
	require.NoError(t, err)

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestAuditEvent_Category(t *testing.T) {
	assert.Equal(t, audit.CategorySecurity, audit.EventVerifierRevoked.Category())
	assert.Equal(t, audit.CategoryOperations, audit.EventBatchCreated.Category())
	assert.Equal(t, audit.CategoryOperations, audit.AuditEvent("unknown").Category())
}
