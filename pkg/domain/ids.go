// Package domain holds the ledger's primitive value types.
//
// Identifiers are distinct named types so an initiative id can never be passed
// where a batch id is expected. Construct them from external input with the
// Parse* functions, which enforce the invariants at the trust boundary.
package domain

import (
	"strconv"
	"strings"
	"unicode"

	dErrors "offsetledger/pkg/domain-errors"
)

// maxPrincipalLength bounds principal identifiers accepted from callers.
const maxPrincipalLength = 256

// Principal is an authenticated actor as supplied by the platform's
// authentication layer. The ledger trusts it as given.
type Principal string

// InitiativeID is assigned sequentially starting at 1.
type InitiativeID uint64

// BatchID is globally unique and assigned sequentially starting at 1.
type BatchID uint64

// RetirementID is assigned sequentially starting at 1.
type RetirementID uint64

// VerificationSeq numbers verifications within a single initiative, starting at 1.
type VerificationSeq uint64

// VintageYear is the year of emission-reduction activity a batch represents.
type VintageYear uint16

func (p Principal) String() string { return string(p) }

// IsZero reports whether the principal is unset.
func (p Principal) IsZero() bool { return p == "" }

func (id InitiativeID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id BatchID) String() string      { return strconv.FormatUint(uint64(id), 10) }
func (id RetirementID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (v VintageYear) String() string   { return strconv.Itoa(int(v)) }

// ParsePrincipal validates a principal from external input.
// Errors: CodeBadRequest when empty, oversized, or containing whitespace or
// control characters.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "principal cannot be empty")
	}
	if len(s) > maxPrincipalLength {
		return "", dErrors.New(dErrors.CodeBadRequest, "principal is too long")
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || r == unicode.ReplacementChar || unicode.Is(unicode.Cf, r)
	}) >= 0 {
		return "", dErrors.New(dErrors.CodeBadRequest, "principal contains invalid characters")
	}
	return Principal(s), nil
}

// ParseInitiativeID parses a positive decimal initiative id.
func ParseInitiativeID(s string) (InitiativeID, error) {
	n, err := parsePositive(s, "initiative id")
	return InitiativeID(n), err
}

// ParseBatchID parses a positive decimal batch id.
func ParseBatchID(s string) (BatchID, error) {
	n, err := parsePositive(s, "batch id")
	return BatchID(n), err
}

// ParseRetirementID parses a positive decimal retirement id.
func ParseRetirementID(s string) (RetirementID, error) {
	n, err := parsePositive(s, "retirement id")
	return RetirementID(n), err
}

// ParseVintageYear parses a four-digit year.
func ParseVintageYear(s string) (VintageYear, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil || n < 1000 || n > 9999 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "vintage year must be a four-digit year")
	}
	return VintageYear(n), nil
}

func parsePositive(s, what string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, what+" must be a positive integer")
	}
	return n, nil
}
