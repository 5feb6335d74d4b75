package memory

import (
	"context"

	"offsetledger/internal/ledger/models"
	"offsetledger/pkg/domain"
	"offsetledger/pkg/platform/sentinel"
)

// memTx stages writes on top of the committed maps. Reads see staged values
// first. Every value crossing the boundary is copied, so a callback mutating
// a record it read cannot leak into committed state before commit.
type memTx struct {
	s *InMemory

	initiatives   map[domain.InitiativeID]*models.Initiative
	verifications []*models.Verification
	batches       map[domain.BatchID]*models.Batch
	holdings      map[models.HoldingKey]*models.Holding
	retirements   map[domain.RetirementID]*models.Retirement
	verifiers     map[domain.Principal]*models.Verifier
}

func newTx(s *InMemory) *memTx {
	return &memTx{
		s:           s,
		initiatives: make(map[domain.InitiativeID]*models.Initiative),
		batches:     make(map[domain.BatchID]*models.Batch),
		holdings:    make(map[models.HoldingKey]*models.Holding),
		retirements: make(map[domain.RetirementID]*models.Retirement),
		verifiers:   make(map[domain.Principal]*models.Verifier),
	}
}

// ID allocation happens directly on the store so concurrent transactions never
// see the same value. An aborted transaction leaves a gap.

func (t *memTx) NextInitiativeID(_ context.Context) (domain.InitiativeID, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.lastInitiativeID++
	return t.s.lastInitiativeID, nil
}

func (t *memTx) NextVerificationSeq(_ context.Context, id domain.InitiativeID) (domain.VerificationSeq, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.lastVerification[id]++
	return t.s.lastVerification[id], nil
}

func (t *memTx) NextBatchID(_ context.Context) (domain.BatchID, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.lastBatchID++
	return t.s.lastBatchID, nil
}

func (t *memTx) NextRetirementID(_ context.Context) (domain.RetirementID, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.lastRetirementID++
	return t.s.lastRetirementID, nil
}

func (t *memTx) InsertInitiative(ctx context.Context, i *models.Initiative) error {
	if _, err := t.Initiative(ctx, i.ID); err == nil {
		return sentinel.ErrAlreadyExists
	}
	t.initiatives[i.ID] = cloneInitiative(i)
	return nil
}

func (t *memTx) Initiative(_ context.Context, id domain.InitiativeID) (*models.Initiative, error) {
	if i, ok := t.initiatives[id]; ok {
		return cloneInitiative(i), nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if i, ok := t.s.initiatives[id]; ok {
		return cloneInitiative(i), nil
	}
	return nil, sentinel.ErrNotFound
}

func (t *memTx) UpdateInitiative(ctx context.Context, i *models.Initiative) error {
	if _, err := t.Initiative(ctx, i.ID); err != nil {
		return err
	}
	t.initiatives[i.ID] = cloneInitiative(i)
	return nil
}

func (t *memTx) InsertVerification(_ context.Context, v *models.Verification) error {
	c := *v
	t.verifications = append(t.verifications, &c)
	return nil
}

func (t *memTx) InsertBatch(ctx context.Context, b *models.Batch) error {
	if _, err := t.Batch(ctx, b.ID); err == nil {
		return sentinel.ErrAlreadyExists
	}
	c := *b
	t.batches[b.ID] = &c
	return nil
}

func (t *memTx) Batch(_ context.Context, id domain.BatchID) (*models.Batch, error) {
	if b, ok := t.batches[id]; ok {
		c := *b
		return &c, nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if b, ok := t.s.batches[id]; ok {
		c := *b
		return &c, nil
	}
	return nil, sentinel.ErrNotFound
}

func (t *memTx) UpdateBatch(ctx context.Context, b *models.Batch) error {
	if _, err := t.Batch(ctx, b.ID); err != nil {
		return err
	}
	c := *b
	t.batches[b.ID] = &c
	return nil
}

func (t *memTx) Holding(_ context.Context, key models.HoldingKey) (*models.Holding, error) {
	if h, ok := t.holdings[key]; ok {
		c := *h
		return &c, nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if h, ok := t.s.holdings[key]; ok {
		c := *h
		return &c, nil
	}
	return models.NewHolding(key), nil
}

func (t *memTx) PutHolding(_ context.Context, h *models.Holding) error {
	c := *h
	t.holdings[h.HoldingKey] = &c
	return nil
}

func (t *memTx) InsertRetirement(ctx context.Context, r *models.Retirement) error {
	if _, err := t.Retirement(ctx, r.ID); err == nil {
		return sentinel.ErrAlreadyExists
	}
	t.retirements[r.ID] = cloneRetirement(r)
	return nil
}

func (t *memTx) Retirement(_ context.Context, id domain.RetirementID) (*models.Retirement, error) {
	if r, ok := t.retirements[id]; ok {
		return cloneRetirement(r), nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if r, ok := t.s.retirements[id]; ok {
		return cloneRetirement(r), nil
	}
	return nil, sentinel.ErrNotFound
}

func (t *memTx) UpdateRetirement(ctx context.Context, r *models.Retirement) error {
	if _, err := t.Retirement(ctx, r.ID); err != nil {
		return err
	}
	t.retirements[r.ID] = cloneRetirement(r)
	return nil
}

func (t *memTx) Verifier(_ context.Context, p domain.Principal) (*models.Verifier, error) {
	if v, ok := t.verifiers[p]; ok {
		return cloneVerifier(v), nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if v, ok := t.s.verifiers[p]; ok {
		return cloneVerifier(v), nil
	}
	return nil, sentinel.ErrNotFound
}

func (t *memTx) PutVerifier(_ context.Context, v *models.Verifier) error {
	t.verifiers[v.Principal] = cloneVerifier(v)
	return nil
}
