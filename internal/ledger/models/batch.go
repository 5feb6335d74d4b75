package models

import (
	"math/bits"
	"time"

	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
)

// BatchStatus is the sale state of a batch.
type BatchStatus string

const (
	BatchStatusAvailable BatchStatus = "available"
	BatchStatusSold      BatchStatus = "sold"
)

// Batch is a vintage-tagged, priced slice of an initiative's supply.
//
// Invariants:
//   - 0 <= Remaining <= Quantity; Remaining never increases
//   - Status is sold iff Remaining == 0
//   - every other field is immutable after construction
type Batch struct {
	ID           domain.BatchID      `json:"id"`
	InitiativeID domain.InitiativeID `json:"initiative_id"`
	VintageYear  domain.VintageYear  `json:"vintage_year"`
	Quantity     uint64              `json:"quantity"`
	Remaining    uint64              `json:"remaining"`
	UnitPrice    uint64              `json:"unit_price"`
	Status       BatchStatus         `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NewBatch builds an available batch with Remaining == Quantity.
func NewBatch(id domain.BatchID, initiativeID domain.InitiativeID, vintage domain.VintageYear,
	quantity, unitPrice uint64, minVintage domain.VintageYear, now time.Time) (*Batch, error) {
	if quantity == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "batch quantity must be positive")
	}
	if unitPrice == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unit price must be positive")
	}
	if vintage < minVintage {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vintage year must be "+minVintage.String()+" or later")
	}
	return &Batch{
		ID:           id,
		InitiativeID: initiativeID,
		VintageYear:  vintage,
		Quantity:     quantity,
		Remaining:    quantity,
		UnitPrice:    unitPrice,
		Status:       BatchStatusAvailable,
		CreatedAt:    now,
	}, nil
}

func (b *Batch) IsAvailable() bool { return b.Status == BatchStatusAvailable }

// Sold is the quantity that has left the batch for holdings.
func (b *Batch) Sold() uint64 { return b.Quantity - b.Remaining }

// CanPurchase validates a purchase of quantity and returns its total price.
func (b *Batch) CanPurchase(quantity uint64) (uint64, error) {
	if !b.IsAvailable() {
		return 0, dErrors.New(dErrors.CodeInvalidState, "batch is not available")
	}
	if quantity == 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "purchase quantity must be positive")
	}
	if quantity > b.Remaining {
		return 0, dErrors.New(dErrors.CodeInsufficientSupply, "purchase quantity exceeds batch remaining")
	}
	hi, amount := bits.Mul64(quantity, b.UnitPrice)
	if hi != 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "purchase amount overflows")
	}
	return amount, nil
}

// ApplyPurchase decrements Remaining and marks the batch sold when it reaches
// exactly zero. Call CanPurchase first.
func (b *Batch) ApplyPurchase(quantity uint64) {
	b.Remaining -= quantity
	if b.Remaining == 0 {
		b.Status = BatchStatusSold
	}
}
