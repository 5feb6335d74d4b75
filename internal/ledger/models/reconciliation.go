package models

import "offsetledger/pkg/domain"

// Reconciliation is a point-in-time evaluation of the conservation law for one
// initiative: every minted credit sits in exactly one of un-batched supply,
// unsold batch remainder, a holder's balance, or the retired ledger.
type Reconciliation struct {
	InitiativeID   domain.InitiativeID `json:"initiative_id"`
	Total          uint64              `json:"total"`
	Available      uint64              `json:"available"`
	BatchIssued    uint64              `json:"batch_issued"`
	BatchRemaining uint64              `json:"batch_remaining"`
	Held           uint64              `json:"held"`
	Retired        uint64              `json:"retired"`
	Balanced       bool                `json:"balanced"`
}

// NewReconciliation evaluates the law from its components.
func NewReconciliation(i *Initiative, batchIssued, batchRemaining, held uint64) *Reconciliation {
	r := &Reconciliation{
		InitiativeID:   i.ID,
		Total:          i.TotalCredits,
		Available:      i.AvailableCredits,
		BatchIssued:    batchIssued,
		BatchRemaining: batchRemaining,
		Held:           held,
		Retired:        i.RetiredCredits,
	}
	placed := r.Available + r.BatchRemaining + r.Held + r.Retired
	r.Balanced = placed == r.Total &&
		r.Total == r.Available+r.BatchIssued &&
		r.BatchIssued-r.BatchRemaining == r.Held+r.Retired
	return r
}
