// Package settlement moves payment for purchases. The ledger calls a Settler
// exactly once per purchase, after every precondition holds and before any
// ledger state changes.
package settlement

import (
	"context"
	"errors"
	"math"
	"sync"

	"offsetledger/pkg/domain"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnavailable       = errors.New("settlement unavailable")
	ErrRejected          = errors.New("settlement rejected")
	ErrBalanceOverflow   = errors.New("payee balance would overflow")
)

// Settler moves amount minor currency units from payer to payee atomically.
// A nil error means the money moved; any error means it did not.
type Settler interface {
	Settle(ctx context.Context, amount uint64, payer, payee domain.Principal) error
}

// InMemoryWallet is a Settler over process-local balances. It backs
// development and tests.
type InMemoryWallet struct {
	mu       sync.Mutex
	balances map[domain.Principal]uint64
}

func NewInMemoryWallet(initial map[domain.Principal]uint64) *InMemoryWallet {
	balances := make(map[domain.Principal]uint64, len(initial))
	for p, v := range initial {
		balances[p] = v
	}
	return &InMemoryWallet{balances: balances}
}

func (w *InMemoryWallet) Settle(ctx context.Context, amount uint64, payer, payee domain.Principal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[payer] < amount {
		return ErrInsufficientFunds
	}
	if payer != payee && amount > math.MaxUint64-w.balances[payee] {
		return ErrBalanceOverflow
	}
	w.balances[payer] -= amount
	w.balances[payee] += amount
	return nil
}

// Fund adds amount to p's balance.
func (w *InMemoryWallet) Fund(p domain.Principal, amount uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[p] += amount
}

func (w *InMemoryWallet) Balance(p domain.Principal) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[p]
}
