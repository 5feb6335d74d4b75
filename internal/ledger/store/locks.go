package store

import (
	"hash/fnv"
	"sort"

	"offsetledger/internal/ledger/models"
	"offsetledger/pkg/domain"
)

// LockSet names the records a transaction mutates. Keys are acquired in
// sorted order by every store implementation, so two transactions with
// overlapping sets can never deadlock.
type LockSet struct {
	keys map[string]struct{}
}

// Locks starts an empty lock set.
func Locks() LockSet {
	return LockSet{keys: make(map[string]struct{})}
}

func (l LockSet) add(k string) LockSet {
	if l.keys == nil {
		l.keys = make(map[string]struct{})
	}
	l.keys[k] = struct{}{}
	return l
}

func (l LockSet) Initiative(id domain.InitiativeID) LockSet {
	return l.add("initiative/" + id.String())
}

func (l LockSet) Batch(id domain.BatchID) LockSet {
	return l.add("batch/" + id.String())
}

func (l LockSet) Holding(k models.HoldingKey) LockSet {
	return l.add("holding/" + k.InitiativeID.String() + "/" + k.VintageYear.String() + "/" + k.Owner.String())
}

func (l LockSet) Retirement(id domain.RetirementID) LockSet {
	return l.add("retirement/" + id.String())
}

func (l LockSet) Verifier(p domain.Principal) LockSet {
	return l.add("verifier/" + p.String())
}

// Keys returns the de-duplicated keys in acquisition order.
func (l LockSet) Keys() []string {
	out := make([]string, 0, len(l.keys))
	for k := range l.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Hash64 maps a lock key to a stable 64-bit value (FNV-1a). Memory stores use
// it to pick a stripe; Postgres uses it as the advisory lock id.
func Hash64(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}
