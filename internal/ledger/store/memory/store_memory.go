// Package memory is the in-process ledger store. It backs tests and
// single-node deployments without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
	"offsetledger/pkg/platform/sentinel"
)

// numLockStripes trades memory for contention: keys hash onto this many
// mutexes, so unrelated keys rarely wait on each other.
const numLockStripes = 128

// defaultTxTimeout is the maximum duration for a transaction when the caller
// supplied no deadline.
const defaultTxTimeout = 5 * time.Second

// InMemory keeps committed ledger state in maps. mu guards the maps
// themselves; stripes serialise transactions touching the same keys.
type InMemory struct {
	mu      sync.RWMutex
	stripes [numLockStripes]sync.Mutex
	timeout time.Duration

	initiatives   map[domain.InitiativeID]*models.Initiative
	verifications map[domain.InitiativeID][]*models.Verification
	batches       map[domain.BatchID]*models.Batch
	holdings      map[models.HoldingKey]*models.Holding
	retirements   map[domain.RetirementID]*models.Retirement
	verifiers     map[domain.Principal]*models.Verifier

	lastInitiativeID domain.InitiativeID
	lastBatchID      domain.BatchID
	lastRetirementID domain.RetirementID
	lastVerification map[domain.InitiativeID]domain.VerificationSeq
}

// Option configures an InMemory store.
type Option func(*InMemory)

// WithTxTimeout overrides the default transaction timeout.
func WithTxTimeout(d time.Duration) Option {
	return func(s *InMemory) { s.timeout = d }
}

func New(opts ...Option) *InMemory {
	s := &InMemory{
		timeout:          defaultTxTimeout,
		initiatives:      make(map[domain.InitiativeID]*models.Initiative),
		verifications:    make(map[domain.InitiativeID][]*models.Verification),
		batches:          make(map[domain.BatchID]*models.Batch),
		holdings:         make(map[models.HoldingKey]*models.Holding),
		retirements:      make(map[domain.RetirementID]*models.Retirement),
		verifiers:        make(map[domain.Principal]*models.Verifier),
		lastVerification: make(map[domain.InitiativeID]domain.VerificationSeq),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunInTx acquires the stripes covering locks in ascending order, runs fn
// against a staged view, and commits the staged writes only if fn succeeds.
func (s *InMemory) RunInTx(ctx context.Context, locks store.LockSet, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	stripes := s.stripesFor(locks)
	for _, i := range stripes {
		s.stripes[i].Lock()
	}
	defer func() {
		for j := len(stripes) - 1; j >= 0; j-- {
			s.stripes[stripes[j]].Unlock()
		}
	}()

	// Check again after acquiring locks
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	tx := newTx(s)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *InMemory) stripesFor(locks store.LockSet) []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, k := range locks.Keys() {
		i := int(store.Hash64(k) % numLockStripes)
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (s *InMemory) commit(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, i := range tx.initiatives {
		s.initiatives[id] = i
	}
	for _, v := range tx.verifications {
		s.verifications[v.InitiativeID] = append(s.verifications[v.InitiativeID], v)
	}
	for id, b := range tx.batches {
		s.batches[id] = b
	}
	for k, h := range tx.holdings {
		s.holdings[k] = h
	}
	for id, r := range tx.retirements {
		s.retirements[id] = r
	}
	for p, v := range tx.verifiers {
		s.verifiers[p] = v
	}
}

// -----------------------------------------------------------------------------
// Reader
// -----------------------------------------------------------------------------

func (s *InMemory) FindInitiative(_ context.Context, id domain.InitiativeID) (*models.Initiative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.initiatives[id]; ok {
		return cloneInitiative(i), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListInitiatives(_ context.Context, filter store.InitiativeFilter) ([]*models.Initiative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Initiative, 0, len(s.initiatives))
	for _, i := range s.initiatives {
		if filter.Matches(i) {
			out = append(out, cloneInitiative(i))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *InMemory) ListVerifications(_ context.Context, id domain.InitiativeID) ([]*models.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.verifications[id]
	out := make([]*models.Verification, 0, len(src))
	for _, v := range src {
		c := *v
		out = append(out, &c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Seq < out[b].Seq })
	return out, nil
}

func (s *InMemory) FindBatch(_ context.Context, id domain.BatchID) (*models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.batches[id]; ok {
		c := *b
		return &c, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListBatches(_ context.Context, id domain.InitiativeID) ([]*models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Batch, 0)
	for _, b := range s.batches {
		if b.InitiativeID == id {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *InMemory) FindHolding(_ context.Context, key models.HoldingKey) (*models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h, ok := s.holdings[key]; ok {
		c := *h
		return &c, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListHoldings(_ context.Context, owner domain.Principal) ([]*models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Holding, 0)
	for k, h := range s.holdings {
		if k.Owner == owner {
			c := *h
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].InitiativeID != out[b].InitiativeID {
			return out[a].InitiativeID < out[b].InitiativeID
		}
		return out[a].VintageYear < out[b].VintageYear
	})
	return out, nil
}

func (s *InMemory) SumHoldings(_ context.Context, id domain.InitiativeID) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total uint64
	for k, h := range s.holdings {
		if k.InitiativeID == id {
			total += h.Balance
		}
	}
	return total, nil
}

func (s *InMemory) FindRetirement(_ context.Context, id domain.RetirementID) (*models.Retirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.retirements[id]; ok {
		return cloneRetirement(r), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListRetirements(_ context.Context, owner domain.Principal) ([]*models.Retirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Retirement, 0)
	for _, r := range s.retirements {
		if r.Owner == owner {
			out = append(out, cloneRetirement(r))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *InMemory) FindVerifier(_ context.Context, p domain.Principal) (*models.Verifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.verifiers[p]; ok {
		return cloneVerifier(v), nil
	}
	return nil, sentinel.ErrNotFound
}

func cloneInitiative(i *models.Initiative) *models.Initiative {
	c := *i
	return &c
}

func cloneRetirement(r *models.Retirement) *models.Retirement {
	c := *r
	if r.BatchID != nil {
		b := *r.BatchID
		c.BatchID = &b
	}
	if r.Beneficiary != nil {
		p := *r.Beneficiary
		c.Beneficiary = &p
	}
	if r.CertificateURL != nil {
		u := *r.CertificateURL
		c.CertificateURL = &u
	}
	return &c
}

func cloneVerifier(v *models.Verifier) *models.Verifier {
	c := *v
	if v.RevokedAt != nil {
		t := *v.RevokedAt
		c.RevokedAt = &t
	}
	return &c
}
