package models

import (
	"math"
	"strings"
	"time"

	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
)

// InitiativeStatus is the lifecycle state of an initiative.
type InitiativeStatus string

const (
	InitiativeStatusPending   InitiativeStatus = "pending"
	InitiativeStatusActive    InitiativeStatus = "active"
	InitiativeStatusCompleted InitiativeStatus = "completed"
	InitiativeStatusSuspended InitiativeStatus = "suspended"
)

// ParseInitiativeStatus validates a status from external input.
func ParseInitiativeStatus(s string) (InitiativeStatus, error) {
	switch st := InitiativeStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case InitiativeStatusPending, InitiativeStatusActive, InitiativeStatusCompleted, InitiativeStatusSuspended:
		return st, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unknown initiative status: "+s)
	}
}

// CanTransitionTo reports whether an administrative status change is allowed.
// Pending only leaves via verification; completed is terminal.
func (s InitiativeStatus) CanTransitionTo(to InitiativeStatus) bool {
	switch s {
	case InitiativeStatusActive:
		return to == InitiativeStatusCompleted || to == InitiativeStatusSuspended
	case InitiativeStatusSuspended:
		return to == InitiativeStatusActive
	default:
		return false
	}
}

// Initiative is the aggregate root for a registered carbon-offset project.
//
// Invariants:
//   - Name and Location are non-empty; StartDate is before EndDate
//   - Category is a member of the configured category set
//   - TotalCredits only grows, and only through ApplyVerification
//   - TotalCredits == AvailableCredits + Σ batch.Quantity over the initiative's batches
//   - RetiredCredits only grows, and only through ApplyRetirement
//   - Verified is true iff at least one verification has been recorded
type Initiative struct {
	ID               domain.InitiativeID `json:"id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	Location         string              `json:"location"`
	DocumentationURL string              `json:"documentation_url,omitempty"`
	Manager          domain.Principal    `json:"manager"`
	Category         domain.Category     `json:"category"`
	StartDate        time.Time           `json:"start_date"`
	EndDate          time.Time           `json:"end_date"`
	TotalCredits     uint64              `json:"total_credits"`
	AvailableCredits uint64              `json:"available_credits"`
	RetiredCredits   uint64              `json:"retired_credits"`
	Verified         bool                `json:"verified"`
	Status           InitiativeStatus    `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// NewInitiative builds a pending initiative with zeroed counters.
func NewInitiative(id domain.InitiativeID, manager domain.Principal, name, description, location, docURL string,
	category domain.Category, start, end time.Time, now time.Time) (*Initiative, error) {
	name = strings.TrimSpace(name)
	location = strings.TrimSpace(location)
	if manager.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "initiative manager is required")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "initiative name cannot be empty")
	}
	if location == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "initiative location cannot be empty")
	}
	if category == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "initiative category cannot be empty")
	}
	if !start.Before(end) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "initiative start must be before end")
	}
	return &Initiative{
		ID:               id,
		Name:             name,
		Description:      strings.TrimSpace(description),
		Location:         location,
		DocumentationURL: strings.TrimSpace(docURL),
		Manager:          manager,
		Category:         category,
		StartDate:        start,
		EndDate:          end,
		Status:           InitiativeStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (i *Initiative) IsActive() bool { return i.Status == InitiativeStatusActive }

// IsManagedBy reports whether p is the initiative's recorded manager.
func (i *Initiative) IsManagedBy(p domain.Principal) bool {
	return !p.IsZero() && i.Manager == p
}

// CanVerify checks whether a verification may be recorded. Pending initiatives
// always accept one; active initiatives accept further verifications only when
// allowActive is set.
func (i *Initiative) CanVerify(allowActive bool) error {
	switch {
	case i.Status == InitiativeStatusPending:
		return nil
	case i.Status == InitiativeStatusActive && allowActive:
		return nil
	default:
		return dErrors.New(dErrors.CodeInvalidState, "initiative is "+string(i.Status)+", verification not allowed")
	}
}

// CanMint checks that credits fit on top of the initiative's counters.
func (i *Initiative) CanMint(credits uint64) error {
	if credits > math.MaxUint64-i.TotalCredits || credits > math.MaxUint64-i.AvailableCredits {
		return dErrors.New(dErrors.CodeValidation, "credits_issued would overflow the initiative's supply")
	}
	return nil
}

// ApplyVerification mints credits and activates the initiative.
// Call CanVerify and CanMint first.
func (i *Initiative) ApplyVerification(credits uint64, now time.Time) {
	i.Verified = true
	i.Status = InitiativeStatusActive
	i.TotalCredits += credits
	i.AvailableCredits += credits
	i.UpdatedAt = now
}

// CanIssueBatch checks that quantity can be carved out of the un-batched supply.
func (i *Initiative) CanIssueBatch(quantity uint64) error {
	if !i.Verified || !i.IsActive() {
		return dErrors.New(dErrors.CodeInvalidState, "initiative must be verified and active to issue batches")
	}
	if quantity == 0 {
		return dErrors.New(dErrors.CodeValidation, "batch quantity must be positive")
	}
	if quantity > i.AvailableCredits {
		return dErrors.New(dErrors.CodeInsufficientSupply, "batch quantity exceeds available credits")
	}
	return nil
}

// ApplyBatchIssued moves quantity out of the un-batched supply.
// Call CanIssueBatch first.
func (i *Initiative) ApplyBatchIssued(quantity uint64, now time.Time) {
	i.AvailableCredits -= quantity
	i.UpdatedAt = now
}

// ApplyRetirement records credits permanently removed from circulation.
// There is no inverse operation.
func (i *Initiative) ApplyRetirement(quantity uint64, now time.Time) {
	i.RetiredCredits += quantity
	i.UpdatedAt = now
}

// CanChangeStatus validates an administrative status transition.
func (i *Initiative) CanChangeStatus(to InitiativeStatus) error {
	if !i.Status.CanTransitionTo(to) {
		return dErrors.New(dErrors.CodeInvalidState, "cannot move initiative from "+string(i.Status)+" to "+string(to))
	}
	return nil
}

// ApplyStatus sets the status. Call CanChangeStatus first.
func (i *Initiative) ApplyStatus(to InitiativeStatus, now time.Time) {
	i.Status = to
	i.UpdatedAt = now
}
