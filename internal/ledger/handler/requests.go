package handler

import (
	"strings"
	"time"

	"offsetledger/internal/ledger/models"
	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
)

// Field size limits for caller supplied text.
const (
	maxNameLength   = 200
	maxTextLength   = 4000
	maxURLLength    = 2048
	maxReasonLength = 1000
)

type RegisterInitiativeRequest struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Location         string    `json:"location"`
	Category         string    `json:"category"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	DocumentationURL string    `json:"documentation_url"`
}

func (r *RegisterInitiativeRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.DocumentationURL = strings.TrimSpace(r.DocumentationURL)
}

// Validate enforces transport limits. Domain rules are checked by the service.
func (r *RegisterInitiativeRequest) Validate() error {
	switch {
	case len(r.Name) > maxNameLength:
		return dErrors.New(dErrors.CodeValidation, "name is too long")
	case len(r.Location) > maxNameLength:
		return dErrors.New(dErrors.CodeValidation, "location is too long")
	case len(r.Description) > maxTextLength:
		return dErrors.New(dErrors.CodeValidation, "description is too long")
	case len(r.DocumentationURL) > maxURLLength:
		return dErrors.New(dErrors.CodeValidation, "documentation_url is too long")
	}
	return nil
}

func (r *RegisterInitiativeRequest) toModel() models.RegisterInitiativeRequest {
	return models.RegisterInitiativeRequest{
		Name:             r.Name,
		Description:      r.Description,
		Location:         r.Location,
		Category:         r.Category,
		StartDate:        r.StartDate,
		EndDate:          r.EndDate,
		DocumentationURL: r.DocumentationURL,
	}
}

type RecordVerificationRequest struct {
	CreditsIssued uint64    `json:"credits_issued"`
	ReportURL     string    `json:"report_url"`
	Methodology   string    `json:"methodology"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	Evidence      string    `json:"evidence"`
}

func (r *RecordVerificationRequest) Normalize() {
	r.ReportURL = strings.TrimSpace(r.ReportURL)
	r.Methodology = strings.TrimSpace(r.Methodology)
	r.Evidence = strings.TrimSpace(r.Evidence)
}

func (r *RecordVerificationRequest) Validate() error {
	switch {
	case len(r.ReportURL) > maxURLLength:
		return dErrors.New(dErrors.CodeValidation, "report_url is too long")
	case len(r.Methodology) > maxNameLength:
		return dErrors.New(dErrors.CodeValidation, "methodology is too long")
	case len(r.Evidence) > maxTextLength:
		return dErrors.New(dErrors.CodeValidation, "evidence is too long")
	}
	return nil
}

func (r *RecordVerificationRequest) toModel(id domain.InitiativeID) models.RecordVerificationRequest {
	return models.RecordVerificationRequest{
		InitiativeID:  id,
		CreditsIssued: r.CreditsIssued,
		ReportURL:     r.ReportURL,
		Methodology:   r.Methodology,
		PeriodStart:   r.PeriodStart,
		PeriodEnd:     r.PeriodEnd,
		Evidence:      r.Evidence,
	}
}

type CreateBatchRequest struct {
	VintageYear uint16 `json:"vintage_year"`
	Quantity    uint64 `json:"quantity"`
	UnitPrice   uint64 `json:"unit_price"`
}

func (r *CreateBatchRequest) toModel(id domain.InitiativeID) models.CreateBatchRequest {
	return models.CreateBatchRequest{
		InitiativeID: id,
		VintageYear:  domain.VintageYear(r.VintageYear),
		Quantity:     r.Quantity,
		UnitPrice:    r.UnitPrice,
	}
}

type PurchaseRequest struct {
	Quantity uint64 `json:"quantity"`
}

type TransferRequest struct {
	InitiativeID uint64 `json:"initiative_id"`
	VintageYear  uint16 `json:"vintage_year"`
	Quantity     uint64 `json:"quantity"`
	To           string `json:"to"`

	to domain.Principal
}

func (r *TransferRequest) Normalize() {
	r.To = strings.TrimSpace(r.To)
}

func (r *TransferRequest) Validate() error {
	if r.InitiativeID == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "initiative_id is required")
	}
	to, err := domain.ParsePrincipal(r.To)
	if err != nil {
		return err
	}
	r.to = to
	return nil
}

func (r *TransferRequest) toModel() models.TransferRequest {
	return models.TransferRequest{
		InitiativeID: domain.InitiativeID(r.InitiativeID),
		VintageYear:  domain.VintageYear(r.VintageYear),
		Quantity:     r.Quantity,
		To:           r.to,
	}
}

type RetireRequest struct {
	InitiativeID uint64  `json:"initiative_id"`
	VintageYear  uint16  `json:"vintage_year"`
	Quantity     uint64  `json:"quantity"`
	Reason       string  `json:"reason"`
	Beneficiary  *string `json:"beneficiary,omitempty"`
	BatchID      *uint64 `json:"batch_id,omitempty"`

	beneficiary *domain.Principal
}

func (r *RetireRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Beneficiary != nil {
		b := strings.TrimSpace(*r.Beneficiary)
		r.Beneficiary = &b
	}
}

func (r *RetireRequest) Validate() error {
	if r.InitiativeID == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "initiative_id is required")
	}
	if len(r.Reason) > maxReasonLength {
		return dErrors.New(dErrors.CodeValidation, "reason is too long")
	}
	if r.BatchID != nil && *r.BatchID == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "batch_id must be a positive integer")
	}
	if r.Beneficiary != nil {
		b, err := domain.ParsePrincipal(*r.Beneficiary)
		if err != nil {
			return err
		}
		r.beneficiary = &b
	}
	return nil
}

func (r *RetireRequest) toModel() models.RetireRequest {
	req := models.RetireRequest{
		InitiativeID: domain.InitiativeID(r.InitiativeID),
		VintageYear:  domain.VintageYear(r.VintageYear),
		Quantity:     r.Quantity,
		Reason:       r.Reason,
		Beneficiary:  r.beneficiary,
	}
	if r.BatchID != nil {
		id := domain.BatchID(*r.BatchID)
		req.BatchID = &id
	}
	return req
}

type AttachCertificateRequest struct {
	CertificateURL string `json:"certificate_url"`
}

func (r *AttachCertificateRequest) Normalize() {
	r.CertificateURL = strings.TrimSpace(r.CertificateURL)
}

func (r *AttachCertificateRequest) Validate() error {
	if len(r.CertificateURL) > maxURLLength {
		return dErrors.New(dErrors.CodeValidation, "certificate_url is too long")
	}
	return nil
}

type AuthorizeVerifierRequest struct {
	Organization string `json:"organization"`
	Credentials  string `json:"credentials"`
}

func (r *AuthorizeVerifierRequest) Normalize() {
	r.Organization = strings.TrimSpace(r.Organization)
	r.Credentials = strings.TrimSpace(r.Credentials)
}

func (r *AuthorizeVerifierRequest) Validate() error {
	switch {
	case len(r.Organization) > maxNameLength:
		return dErrors.New(dErrors.CodeValidation, "organization is too long")
	case len(r.Credentials) > maxTextLength:
		return dErrors.New(dErrors.CodeValidation, "credentials is too long")
	}
	return nil
}

type UpdateStatusRequest struct {
	Status string `json:"status"`

	status models.InitiativeStatus
}

func (r *UpdateStatusRequest) Validate() error {
	st, err := models.ParseInitiativeStatus(r.Status)
	if err != nil {
		return err
	}
	r.status = st
	return nil
}

// BalanceResponse is the body of a single holding-line balance query.
type BalanceResponse struct {
	Owner        domain.Principal    `json:"owner"`
	InitiativeID domain.InitiativeID `json:"initiative_id"`
	VintageYear  domain.VintageYear  `json:"vintage_year"`
	Balance      uint64              `json:"balance"`
}
