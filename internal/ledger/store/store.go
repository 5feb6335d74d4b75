// Package store defines the persistence boundary of the ledger.
//
// Stores are pure I/O. Every lifecycle rule lives in models and is enforced by
// the service inside RunInTx, which gives the callback an exclusive view of
// the keys named in its LockSet and commits all writes or none.
package store

import (
	"context"

	"offsetledger/internal/ledger/models"
	"offsetledger/pkg/domain"
)

// Tx is the read/write view handed to a RunInTx callback. Writes become
// visible to other callers only when the callback returns nil.
//
// Getters return sentinel.ErrNotFound for absent records, except Holding,
// which returns an empty holding for an absent key.
type Tx interface {
	NextInitiativeID(ctx context.Context) (domain.InitiativeID, error)
	InsertInitiative(ctx context.Context, i *models.Initiative) error
	Initiative(ctx context.Context, id domain.InitiativeID) (*models.Initiative, error)
	UpdateInitiative(ctx context.Context, i *models.Initiative) error

	NextVerificationSeq(ctx context.Context, id domain.InitiativeID) (domain.VerificationSeq, error)
	InsertVerification(ctx context.Context, v *models.Verification) error

	NextBatchID(ctx context.Context) (domain.BatchID, error)
	InsertBatch(ctx context.Context, b *models.Batch) error
	Batch(ctx context.Context, id domain.BatchID) (*models.Batch, error)
	UpdateBatch(ctx context.Context, b *models.Batch) error

	Holding(ctx context.Context, key models.HoldingKey) (*models.Holding, error)
	PutHolding(ctx context.Context, h *models.Holding) error

	NextRetirementID(ctx context.Context) (domain.RetirementID, error)
	InsertRetirement(ctx context.Context, r *models.Retirement) error
	Retirement(ctx context.Context, id domain.RetirementID) (*models.Retirement, error)
	UpdateRetirement(ctx context.Context, r *models.Retirement) error

	Verifier(ctx context.Context, p domain.Principal) (*models.Verifier, error)
	PutVerifier(ctx context.Context, v *models.Verifier) error
}

// Reader serves read-only queries outside of any transaction.
type Reader interface {
	FindInitiative(ctx context.Context, id domain.InitiativeID) (*models.Initiative, error)
	ListInitiatives(ctx context.Context, filter InitiativeFilter) ([]*models.Initiative, error)
	ListVerifications(ctx context.Context, id domain.InitiativeID) ([]*models.Verification, error)
	FindBatch(ctx context.Context, id domain.BatchID) (*models.Batch, error)
	ListBatches(ctx context.Context, id domain.InitiativeID) ([]*models.Batch, error)
	FindHolding(ctx context.Context, key models.HoldingKey) (*models.Holding, error)
	ListHoldings(ctx context.Context, owner domain.Principal) ([]*models.Holding, error)
	SumHoldings(ctx context.Context, id domain.InitiativeID) (uint64, error)
	FindRetirement(ctx context.Context, id domain.RetirementID) (*models.Retirement, error)
	ListRetirements(ctx context.Context, owner domain.Principal) ([]*models.Retirement, error)
	FindVerifier(ctx context.Context, p domain.Principal) (*models.Verifier, error)
}

// Store is the full persistence port used by the ledger service.
type Store interface {
	Reader
	// RunInTx runs fn with exclusive access to every key in locks. If fn
	// returns an error no write it made is kept. fn receives ctx bounded by
	// the store's transaction timeout when ctx carries no deadline.
	RunInTx(ctx context.Context, locks LockSet, fn func(ctx context.Context, tx Tx) error) error
}

// InitiativeFilter narrows ListInitiatives. Zero fields match everything.
type InitiativeFilter struct {
	Manager domain.Principal
	Status  models.InitiativeStatus
}

// Matches reports whether i passes the filter.
func (f InitiativeFilter) Matches(i *models.Initiative) bool {
	if f.Manager != "" && i.Manager != f.Manager {
		return false
	}
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	return true
}
