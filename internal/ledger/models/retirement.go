package models

import (
	"strings"
	"time"

	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
)

// Retirement permanently removes credits from circulation.
//
// Invariants:
//   - append-only; CertificateURL is the only field mutated after creation
//   - CertificateURL moves from nil to set at most once
//   - Beneficiary, when set, differs from Owner
//   - BatchID is provenance only; nil means "not tracked", never "batch zero"
type Retirement struct {
	ID             domain.RetirementID `json:"id"`
	Owner          domain.Principal    `json:"owner"`
	InitiativeID   domain.InitiativeID `json:"initiative_id"`
	VintageYear    domain.VintageYear  `json:"vintage_year"`
	BatchID        *domain.BatchID     `json:"batch_id,omitempty"`
	Quantity       uint64              `json:"quantity"`
	Reason         string              `json:"reason"`
	Beneficiary    *domain.Principal   `json:"beneficiary,omitempty"`
	RetiredAt      time.Time           `json:"retired_at"`
	CertificateURL *string             `json:"certificate_url,omitempty"`
}

// NewRetirement validates and builds a retirement record with no certificate.
func NewRetirement(id domain.RetirementID, owner domain.Principal, key HoldingKey, batchID *domain.BatchID,
	quantity uint64, reason string, beneficiary *domain.Principal, now time.Time) (*Retirement, error) {
	reason = strings.TrimSpace(reason)
	if quantity == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "retirement quantity must be positive")
	}
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "retirement reason cannot be empty")
	}
	if beneficiary != nil && *beneficiary == owner {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "beneficiary must differ from owner")
	}
	return &Retirement{
		ID:           id,
		Owner:        owner,
		InitiativeID: key.InitiativeID,
		VintageYear:  key.VintageYear,
		BatchID:      batchID,
		Quantity:     quantity,
		Reason:       reason,
		Beneficiary:  beneficiary,
		RetiredAt:    now,
	}, nil
}

func (r *Retirement) HasCertificate() bool { return r.CertificateURL != nil }

// CanAttachCertificate enforces set-once semantics.
func (r *Retirement) CanAttachCertificate(url string) error {
	if r.HasCertificate() {
		return dErrors.New(dErrors.CodeAlreadySet, "certificate already attached")
	}
	if strings.TrimSpace(url) == "" {
		return dErrors.New(dErrors.CodeValidation, "certificate url is required")
	}
	return nil
}

// ApplyCertificate sets the certificate. Call CanAttachCertificate first.
func (r *Retirement) ApplyCertificate(url string) {
	u := strings.TrimSpace(url)
	r.CertificateURL = &u
}
