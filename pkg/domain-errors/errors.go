// Package domainerrors defines the coded error type returned by ledger services.
//
// Services return *Error values so transports can map them to status codes
// without string matching. Stores never construct these directly; they return
// sentinel facts (see pkg/platform/sentinel) which services translate.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers and transports.
type Code string

const (
	CodeNotFound            Code = "not_found"
	CodeUnauthorized        Code = "unauthorized"
	CodeForbidden           Code = "forbidden"
	CodeInvalidState        Code = "invalid_state"
	CodeValidation          Code = "validation_error"
	CodeBadRequest          Code = "bad_request"
	CodeInsufficientBalance Code = "insufficient_balance"
	CodeInsufficientSupply  Code = "insufficient_supply"
	CodeAlreadySet          Code = "already_set"
	CodeSettlementFailure   Code = "settlement_failure"
	CodeConflict            Code = "conflict"
	CodeTimeout             Code = "timeout"
	CodeInternal            Code = "internal_error"

	// CodeInvariantViolation is returned by model constructors and transition
	// guards. Services convert it to a caller-facing code.
	CodeInvariantViolation Code = "invariant_violation"
)

// Error is a coded, wrappable error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether err, or any error it wraps, is a *Error with code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if errors.As(err, &de) {
			if de.Code == code {
				return true
			}
			err = de.Err
			continue
		}
		return false
	}
	return false
}

// CodeOf returns the outermost code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Is is errors.Is re-exported so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
