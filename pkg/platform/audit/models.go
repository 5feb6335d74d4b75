package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers movements of credits that a registry must be
	// able to reproduce: minting, sales, transfers, retirements, certificates.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers changes to who may act: verifier
	// authorizations and revocations, status overrides.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine catalogue changes.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from ledger logic after a mutation commits. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID           string
	Category     EventCategory
	Timestamp    time.Time
	Action       string
	Actor        string // principal that performed the action
	Subject      string // record acted on, e.g. "batch/7"
	InitiativeID uint64
	Counterparty string // buyer, recipient, beneficiary or verifier when relevant
	Quantity     uint64
	Amount       uint64
	Reason       string
	RequestID    string
}

type AuditEvent string

const (
	EventInitiativeRegistered    AuditEvent = "initiative_registered"
	EventInitiativeStatusChanged AuditEvent = "initiative_status_changed"
	EventVerificationRecorded    AuditEvent = "verification_recorded"
	EventBatchCreated            AuditEvent = "batch_created"
	EventCreditsPurchased        AuditEvent = "credits_purchased"
	EventCreditsTransferred      AuditEvent = "credits_transferred"
	EventCreditsRetired          AuditEvent = "credits_retired"
	EventCertificateAttached     AuditEvent = "certificate_attached"
	EventVerifierAuthorized      AuditEvent = "verifier_authorized"
	EventVerifierRevoked         AuditEvent = "verifier_revoked"
	EventSettlementFailed        AuditEvent = "settlement_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventVerificationRecorded: CategoryCompliance,
	EventCreditsPurchased:     CategoryCompliance,
	EventCreditsTransferred:   CategoryCompliance,
	EventCreditsRetired:       CategoryCompliance,
	EventCertificateAttached:  CategoryCompliance,

	EventVerifierAuthorized:      CategorySecurity,
	EventVerifierRevoked:         CategorySecurity,
	EventInitiativeStatusChanged: CategorySecurity,
	EventSettlementFailed:        CategorySecurity,

	EventInitiativeRegistered: CategoryOperations,
	EventBatchCreated:         CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
