package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/internal/ledger/store/memory"
	"offsetledger/pkg/domain"
)

func seed(t *testing.T) *memory.InMemory {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	s := memory.New()
	err := s.RunInTx(ctx, store.Locks(), func(ctx context.Context, tx store.Tx) error {
		id, _ := tx.NextInitiativeID(ctx)
		i, err := models.NewInitiative(id, "mgr", "Cookstoves", "", "Ghana", "",
			domain.CategoryEnergyEfficiency, now, now.Add(time.Hour), now)
		if err != nil {
			return err
		}
		if err := tx.InsertInitiative(ctx, i); err != nil {
			return err
		}
		active, _ := models.NewVerifier("verra", "Verra", "", "root", now)
		revoked, _ := models.NewVerifier("gold", "Gold Standard", "", "root", now)
		revoked.ApplyRevocation(now)
		if err := tx.PutVerifier(ctx, active); err != nil {
			return err
		}
		return tx.PutVerifier(ctx, revoked)
	})
	require.NoError(t, err)
	return s
}

func TestGate(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	g := New([]domain.Principal{"root"}, FromReader(s))

	assert.True(t, g.IsAdmin("root"))
	assert.False(t, g.IsAdmin("mgr"))

	tests := []struct {
		name string
		p    domain.Principal
		want bool
	}{
		{"active verifier", "verra", true},
		{"revoked verifier", "gold", false},
		{"unknown principal", "nobody", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := g.IsAuthorizedVerifier(ctx, tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	ok, err := g.IsInitiativeManager(ctx, "mgr", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = g.IsInitiativeManager(ctx, "verra", 1)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = g.IsInitiativeManager(ctx, "mgr", 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingSource struct{}

func (failingSource) Verifier(context.Context, domain.Principal) (*models.Verifier, error) {
	return nil, errors.New("db down")
}

func (failingSource) Initiative(context.Context, domain.InitiativeID) (*models.Initiative, error) {
	return nil, errors.New("db down")
}

func TestGate_PropagatesInfrastructureErrors(t *testing.T) {
	g := New(nil, nil).Within(failingSource{})
	_, err := g.IsAuthorizedVerifier(context.Background(), "x")
	assert.Error(t, err)
	_, err = g.IsInitiativeManager(context.Background(), "x", 1)
	assert.Error(t, err)
}
