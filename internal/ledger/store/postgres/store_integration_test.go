//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/domain"
	"offsetledger/pkg/platform/sentinel"
	"offsetledger/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Store
	ctx   context.Context
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = New(s.pg.Pool)
	s.ctx = context.Background()
	s.now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func (s *PostgresStoreSuite) seedActiveInitiative(credits uint64) domain.InitiativeID {
	var id domain.InitiativeID
	err := s.store.RunInTx(s.ctx, store.Locks(), func(ctx context.Context, tx store.Tx) error {
		next, err := tx.NextInitiativeID(s.ctx)
		if err != nil {
			return err
		}
		i, err := models.NewInitiative(next, "manager", "Biogas", "", "Nepal", "",
			domain.CategoryMethaneCapture, s.now, s.now.Add(time.Hour), s.now)
		if err != nil {
			return err
		}
		if credits > 0 {
			i.ApplyVerification(credits, s.now)
		}
		id = next
		return tx.InsertInitiative(s.ctx, i)
	})
	s.Require().NoError(err)
	return id
}

func (s *PostgresStoreSuite) TestInitiativeRoundTrip() {
	id := s.seedActiveInitiative(500)

	got, err := s.store.FindInitiative(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Biogas", got.Name)
	s.Equal(uint64(500), got.TotalCredits)
	s.Equal(models.InitiativeStatusActive, got.Status)
	s.Equal(domain.CategoryMethaneCapture, got.Category)

	list, err := s.store.ListInitiatives(s.ctx, store.InitiativeFilter{Status: models.InitiativeStatusActive})
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *PostgresStoreSuite) TestRollbackOnCallbackError() {
	id := s.seedActiveInitiative(100)
	key := models.HoldingKey{Owner: "alice", InitiativeID: id, VintageYear: 2024}

	err := s.store.RunInTx(s.ctx, store.Locks().Holding(key), func(ctx context.Context, tx store.Tx) error {
		h, err := tx.Holding(s.ctx, key)
		s.Require().NoError(err)
		h.ApplyCredit(10, s.now)
		s.Require().NoError(tx.PutHolding(s.ctx, h))
		return errors.New("abort")
	})
	s.Require().Error(err)

	_, err = s.store.FindHolding(s.ctx, key)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestVerificationSeqPerInitiative() {
	a := s.seedActiveInitiative(0)
	b := s.seedActiveInitiative(0)

	var seqs []domain.VerificationSeq
	err := s.store.RunInTx(s.ctx, store.Locks().Initiative(a).Initiative(b), func(ctx context.Context, tx store.Tx) error {
		for _, id := range []domain.InitiativeID{a, b, a} {
			seq, err := tx.NextVerificationSeq(s.ctx, id)
			if err != nil {
				return err
			}
			v, err := models.NewVerification(id, seq, "verra", 10, "", "VM0042", s.now, s.now, "", s.now)
			if err != nil {
				return err
			}
			if err := tx.InsertVerification(s.ctx, v); err != nil {
				return err
			}
			seqs = append(seqs, seq)
		}
		return nil
	})
	s.Require().NoError(err)
	s.Equal([]domain.VerificationSeq{1, 1, 2}, seqs)

	list, err := s.store.ListVerifications(s.ctx, a)
	s.Require().NoError(err)
	s.Len(list, 2)
}

func (s *PostgresStoreSuite) TestRetirementOptionalFields() {
	id := s.seedActiveInitiative(100)
	beneficiary := domain.Principal("acme")

	var rid domain.RetirementID
	err := s.store.RunInTx(s.ctx, store.Locks(), func(ctx context.Context, tx store.Tx) error {
		next, err := tx.NextRetirementID(s.ctx)
		if err != nil {
			return err
		}
		key := models.HoldingKey{Owner: "alice", InitiativeID: id, VintageYear: 2024}
		r, err := models.NewRetirement(next, "alice", key, nil, 5, "scope 3", &beneficiary, s.now)
		if err != nil {
			return err
		}
		rid = next
		return tx.InsertRetirement(s.ctx, r)
	})
	s.Require().NoError(err)

	got, err := s.store.FindRetirement(s.ctx, rid)
	s.Require().NoError(err)
	s.Nil(got.BatchID)
	s.Nil(got.CertificateURL)
	s.Require().NotNil(got.Beneficiary)
	s.Equal(beneficiary, *got.Beneficiary)
}

func (s *PostgresStoreSuite) TestAdvisoryLocksSerialiseCredits() {
	id := s.seedActiveInitiative(1000)
	key := models.HoldingKey{Owner: "bob", InitiativeID: id, VintageYear: 2024}

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.RunInTx(s.ctx, store.Locks().Holding(key), func(ctx context.Context, tx store.Tx) error {
				h, err := tx.Holding(s.ctx, key)
				if err != nil {
					return err
				}
				h.ApplyCredit(1, time.Now())
				return tx.PutHolding(s.ctx, h)
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	total, err := s.store.SumHoldings(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(uint64(workers), total)
}
