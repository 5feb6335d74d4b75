package models

import (
	"strings"
	"time"

	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
)

// VerifierStatus is the authorization state of a verifier.
type VerifierStatus string

const (
	VerifierStatusActive  VerifierStatus = "active"
	VerifierStatusRevoked VerifierStatus = "revoked"
)

// Verifier records an admin's authorization of a third-party verifier.
type Verifier struct {
	Principal    domain.Principal `json:"principal"`
	Organization string           `json:"organization"`
	Credentials  string           `json:"credentials"`
	AuthorizedBy domain.Principal `json:"authorized_by"`
	AuthorizedAt time.Time        `json:"authorized_at"`
	Status       VerifierStatus   `json:"status"`
	RevokedAt    *time.Time       `json:"revoked_at,omitempty"`
}

// NewVerifier builds an active verifier record.
func NewVerifier(p domain.Principal, organization, credentials string, admin domain.Principal, now time.Time) (*Verifier, error) {
	organization = strings.TrimSpace(organization)
	if p.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "verifier principal is required")
	}
	if organization == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "verifier organization cannot be empty")
	}
	return &Verifier{
		Principal:    p,
		Organization: organization,
		Credentials:  strings.TrimSpace(credentials),
		AuthorizedBy: admin,
		AuthorizedAt: now,
		Status:       VerifierStatusActive,
	}, nil
}

func (v *Verifier) IsActive() bool { return v.Status == VerifierStatusActive }

// CanRevoke checks that the verifier is currently active.
func (v *Verifier) CanRevoke() error {
	if !v.IsActive() {
		return dErrors.New(dErrors.CodeInvalidState, "verifier is already revoked")
	}
	return nil
}

// ApplyRevocation revokes the verifier. Call CanRevoke first.
func (v *Verifier) ApplyRevocation(now time.Time) {
	v.Status = VerifierStatusRevoked
	v.RevokedAt = &now
}
