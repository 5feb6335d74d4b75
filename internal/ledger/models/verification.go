package models

import (
	"strings"
	"time"

	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
)

// VerificationID is the composite key of a verification event.
type VerificationID struct {
	InitiativeID domain.InitiativeID    `json:"initiative_id"`
	Seq          domain.VerificationSeq `json:"seq"`
}

// Verification is an append-only record of a third-party assessment. It is the
// only mechanism that increases an initiative's credit supply.
type Verification struct {
	InitiativeID  domain.InitiativeID    `json:"initiative_id"`
	Seq           domain.VerificationSeq `json:"seq"`
	Verifier      domain.Principal       `json:"verifier"`
	CreditsIssued uint64                 `json:"credits_issued"`
	ReportURL     string                 `json:"report_url,omitempty"`
	Methodology   string                 `json:"methodology"`
	PeriodStart   time.Time              `json:"period_start"`
	PeriodEnd     time.Time              `json:"period_end"`
	Evidence      string                 `json:"evidence,omitempty"`
	RecordedAt    time.Time              `json:"recorded_at"`
}

// Key returns the verification's composite id.
func (v *Verification) Key() VerificationID {
	return VerificationID{InitiativeID: v.InitiativeID, Seq: v.Seq}
}

// NewVerification validates and builds a verification record.
func NewVerification(initiativeID domain.InitiativeID, seq domain.VerificationSeq, verifier domain.Principal,
	credits uint64, reportURL, methodology string, periodStart, periodEnd time.Time, evidence string, now time.Time) (*Verification, error) {
	methodology = strings.TrimSpace(methodology)
	if credits == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "credits issued must be positive")
	}
	if methodology == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "methodology cannot be empty")
	}
	if periodEnd.Before(periodStart) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reporting period start must not be after end")
	}
	return &Verification{
		InitiativeID:  initiativeID,
		Seq:           seq,
		Verifier:      verifier,
		CreditsIssued: credits,
		ReportURL:     strings.TrimSpace(reportURL),
		Methodology:   methodology,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		Evidence:      evidence,
		RecordedAt:    now,
	}, nil
}
