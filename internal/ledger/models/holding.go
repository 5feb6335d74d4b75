package models

import (
	"math"
	"time"

	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
)

// HoldingKey identifies one balance line in the holdings ledger.
type HoldingKey struct {
	Owner        domain.Principal    `json:"owner"`
	InitiativeID domain.InitiativeID `json:"initiative_id"`
	VintageYear  domain.VintageYear  `json:"vintage_year"`
}

// WithOwner returns the same initiative/vintage line for another owner.
func (k HoldingKey) WithOwner(owner domain.Principal) HoldingKey {
	k.Owner = owner
	return k
}

// Holding is a principal's balance for one (initiative, vintage) line.
// Balance never goes negative; a drained holding is kept at zero.
type Holding struct {
	HoldingKey
	Balance   uint64    `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewHolding returns an empty holding for key.
func NewHolding(key HoldingKey) *Holding {
	return &Holding{HoldingKey: key}
}

// CanDebit fails rather than underflow.
func (h *Holding) CanDebit(quantity uint64) error {
	if quantity > h.Balance {
		return dErrors.New(dErrors.CodeInsufficientBalance, "insufficient balance")
	}
	return nil
}

// ApplyDebit reduces the balance. Call CanDebit first.
func (h *Holding) ApplyDebit(quantity uint64, now time.Time) {
	h.Balance -= quantity
	h.UpdatedAt = now
}

// CanCredit guards against overflow, which conservation makes unreachable in
// practice because total supply is itself a uint64.
func (h *Holding) CanCredit(quantity uint64) error {
	if quantity > math.MaxUint64-h.Balance {
		return dErrors.New(dErrors.CodeInternal, "holding balance overflow")
	}
	return nil
}

// ApplyCredit increases the balance. Call CanCredit first.
func (h *Holding) ApplyCredit(quantity uint64, now time.Time) {
	h.Balance += quantity
	h.UpdatedAt = now
}
