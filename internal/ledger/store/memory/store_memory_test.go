package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
	"offsetledger/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) seedInitiative() domain.InitiativeID {
	var id domain.InitiativeID
	err := s.store.RunInTx(s.ctx, store.Locks(), func(ctx context.Context, tx store.Tx) error {
		next, err := tx.NextInitiativeID(s.ctx)
		if err != nil {
			return err
		}
		i, err := models.NewInitiative(next, "manager", "Wind Farm", "", "Gujarat", "",
			domain.CategoryRenewableEnergy, s.now, s.now.Add(time.Hour), s.now)
		if err != nil {
			return err
		}
		id = next
		return tx.InsertInitiative(s.ctx, i)
	})
	s.Require().NoError(err)
	return id
}

func (s *InMemoryStoreSuite) TestCommitMakesWritesVisible() {
	id := s.seedInitiative()

	got, err := s.store.FindInitiative(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Wind Farm", got.Name)
	s.Equal(domain.InitiativeID(1), got.ID)
}

func (s *InMemoryStoreSuite) TestFailedCallbackDiscardsAllWrites() {
	id := s.seedInitiative()
	boom := errors.New("boom")
	key := models.HoldingKey{Owner: "alice", InitiativeID: id, VintageYear: 2024}

	err := s.store.RunInTx(s.ctx, store.Locks().Initiative(id).Holding(key), func(ctx context.Context, tx store.Tx) error {
		i, err := tx.Initiative(s.ctx, id)
		if err != nil {
			return err
		}
		i.ApplyVerification(500, s.now)
		if err := tx.UpdateInitiative(s.ctx, i); err != nil {
			return err
		}
		h, _ := tx.Holding(s.ctx, key)
		h.ApplyCredit(10, s.now)
		if err := tx.PutHolding(s.ctx, h); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	got, err := s.store.FindInitiative(s.ctx, id)
	s.Require().NoError(err)
	s.Zero(got.TotalCredits)
	s.Equal(models.InitiativeStatusPending, got.Status)

	_, err = s.store.FindHolding(s.ctx, key)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestTxReadsOwnWrites() {
	id := s.seedInitiative()
	key := models.HoldingKey{Owner: "bob", InitiativeID: id, VintageYear: 2023}

	err := s.store.RunInTx(s.ctx, store.Locks().Holding(key), func(ctx context.Context, tx store.Tx) error {
		h, err := tx.Holding(s.ctx, key)
		s.Require().NoError(err)
		s.Zero(h.Balance)
		h.ApplyCredit(7, s.now)
		s.Require().NoError(tx.PutHolding(s.ctx, h))

		again, err := tx.Holding(s.ctx, key)
		s.Require().NoError(err)
		s.Equal(uint64(7), again.Balance)
		return nil
	})
	s.Require().NoError(err)

	total, err := s.store.SumHoldings(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(uint64(7), total)
}

func (s *InMemoryStoreSuite) TestReturnedRecordsAreCopies() {
	id := s.seedInitiative()

	got, err := s.store.FindInitiative(s.ctx, id)
	s.Require().NoError(err)
	got.Name = "mutated"

	again, err := s.store.FindInitiative(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Wind Farm", again.Name)
}

func (s *InMemoryStoreSuite) TestIDsAreSequentialAndNotReusedAfterAbort() {
	first := s.seedInitiative()
	_ = s.store.RunInTx(s.ctx, store.Locks(), func(ctx context.Context, tx store.Tx) error {
		_, err := tx.NextInitiativeID(s.ctx)
		s.Require().NoError(err)
		return errors.New("abort")
	})
	third := s.seedInitiative()

	s.Equal(domain.InitiativeID(1), first)
	s.Equal(domain.InitiativeID(3), third)
}

func (s *InMemoryStoreSuite) TestVerificationSeqIsScopedPerInitiative() {
	a := s.seedInitiative()
	b := s.seedInitiative()

	var seqs []domain.VerificationSeq
	err := s.store.RunInTx(s.ctx, store.Locks().Initiative(a).Initiative(b), func(ctx context.Context, tx store.Tx) error {
		for _, id := range []domain.InitiativeID{a, a, b} {
			seq, err := tx.NextVerificationSeq(s.ctx, id)
			if err != nil {
				return err
			}
			seqs = append(seqs, seq)
		}
		return nil
	})
	s.Require().NoError(err)
	s.Equal([]domain.VerificationSeq{1, 2, 1}, seqs)
}

func (s *InMemoryStoreSuite) TestInsertDuplicateRejected() {
	id := s.seedInitiative()
	err := s.store.RunInTx(s.ctx, store.Locks(), func(ctx context.Context, tx store.Tx) error {
		i, err := tx.Initiative(s.ctx, id)
		if err != nil {
			return err
		}
		return tx.InsertInitiative(s.ctx, i)
	})
	s.ErrorIs(err, sentinel.ErrAlreadyExists)
}

func (s *InMemoryStoreSuite) TestCancelledContextReturnsTimeout() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	called := false
	err := s.store.RunInTx(ctx, store.Locks(), func(context.Context, store.Tx) error {
		called = true
		return nil
	})
	s.False(called)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

func (s *InMemoryStoreSuite) TestCallbackContextCarriesTxTimeout() {
	st := New(WithTxTimeout(time.Minute))
	before := time.Now()

	err := st.RunInTx(context.Background(), store.Locks(), func(ctx context.Context, _ store.Tx) error {
		deadline, ok := ctx.Deadline()
		s.Require().True(ok, "callback context is bounded")
		s.WithinDuration(before.Add(time.Minute), deadline, 5*time.Second)
		return nil
	})
	s.Require().NoError(err)

	parent, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	want, _ := parent.Deadline()
	err = st.RunInTx(parent, store.Locks(), func(ctx context.Context, _ store.Tx) error {
		got, ok := ctx.Deadline()
		s.Require().True(ok)
		s.Equal(want, got, "caller deadline wins")
		return nil
	})
	s.Require().NoError(err)
}

func (s *InMemoryStoreSuite) TestListFilters() {
	a := s.seedInitiative()
	s.seedInitiative()

	err := s.store.RunInTx(s.ctx, store.Locks().Initiative(a), func(ctx context.Context, tx store.Tx) error {
		i, err := tx.Initiative(s.ctx, a)
		if err != nil {
			return err
		}
		i.ApplyVerification(10, s.now)
		return tx.UpdateInitiative(s.ctx, i)
	})
	s.Require().NoError(err)

	active, err := s.store.ListInitiatives(s.ctx, store.InitiativeFilter{Status: models.InitiativeStatusActive})
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(a, active[0].ID)

	all, err := s.store.ListInitiatives(s.ctx, store.InitiativeFilter{Manager: "manager"})
	s.Require().NoError(err)
	s.Len(all, 2)
}

func TestInMemory_ConcurrentCreditsSerialise(t *testing.T) {
	s := New()
	ctx := context.Background()
	key := models.HoldingKey{Owner: "carol", InitiativeID: 1, VintageYear: 2024}

	const workers = 50
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.RunInTx(ctx, store.Locks().Holding(key), func(ctx context.Context, tx store.Tx) error {
				h, err := tx.Holding(ctx, key)
				if err != nil {
					return err
				}
				h.ApplyCredit(1, time.Now())
				return tx.PutHolding(ctx, h)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	h, err := s.FindHolding(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(workers), h.Balance)
}

func TestInMemory_StripesAreSortedAndUnique(t *testing.T) {
	s := New()
	locks := store.Locks().Batch(1).Batch(1).Initiative(2).Holding(models.HoldingKey{Owner: "x", InitiativeID: 2, VintageYear: 2024})
	stripes := s.stripesFor(locks)
	require.NotEmpty(t, stripes)
	for i := 1; i < len(stripes); i++ {
		assert.Less(t, stripes[i-1], stripes[i])
	}
}
