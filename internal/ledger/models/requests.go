package models

import (
	"strings"
	"time"

	"offsetledger/pkg/domain"
)

// RegisterInitiativeRequest carries the caller-supplied fields of a new
// initiative. The manager is always the caller.
type RegisterInitiativeRequest struct {
	Name             string
	Description      string
	Location         string
	Category         string
	StartDate        time.Time
	EndDate          time.Time
	DocumentationURL string
}

type RecordVerificationRequest struct {
	InitiativeID  domain.InitiativeID
	CreditsIssued uint64
	ReportURL     string
	Methodology   string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Evidence      string
}

type CreateBatchRequest struct {
	InitiativeID domain.InitiativeID
	VintageYear  domain.VintageYear
	Quantity     uint64
	UnitPrice    uint64
}

// TransferRequest moves credits from the caller to To on one holding line.
type TransferRequest struct {
	InitiativeID domain.InitiativeID
	VintageYear  domain.VintageYear
	Quantity     uint64
	To           domain.Principal
}

// RetireRequest retires credits from the caller's holding. BatchID is
// optional provenance and must name a batch of the same initiative and vintage.
type RetireRequest struct {
	InitiativeID domain.InitiativeID
	VintageYear  domain.VintageYear
	Quantity     uint64
	Reason       string
	Beneficiary  *domain.Principal
	BatchID      *domain.BatchID
}

type AuthorizeVerifierRequest struct {
	Verifier     domain.Principal
	Organization string
	Credentials  string
}

func (r *RegisterInitiativeRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)
	r.Category = strings.TrimSpace(r.Category)
	r.DocumentationURL = strings.TrimSpace(r.DocumentationURL)
}

func (r *RetireRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

// PurchaseReceipt describes a committed purchase.
type PurchaseReceipt struct {
	BatchID      domain.BatchID      `json:"batch_id"`
	InitiativeID domain.InitiativeID `json:"initiative_id"`
	VintageYear  domain.VintageYear  `json:"vintage_year"`
	Buyer        domain.Principal    `json:"buyer"`
	Payee        domain.Principal    `json:"payee"`
	Quantity     uint64              `json:"quantity"`
	Amount       uint64              `json:"amount"`
	Remaining    uint64              `json:"remaining"`
	BatchStatus  BatchStatus         `json:"batch_status"`
	Balance      uint64              `json:"balance"`
}
