// Package httputil holds the JSON response and request helpers shared by
// every HTTP handler.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "offsetledger/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies read by DecodeAndPrepare.
const maxBodyBytes = 1 << 20

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeNotFound:            http.StatusNotFound,
	dErrors.CodeUnauthorized:        http.StatusUnauthorized,
	dErrors.CodeForbidden:           http.StatusForbidden,
	dErrors.CodeInvalidState:        http.StatusConflict,
	dErrors.CodeValidation:          http.StatusUnprocessableEntity,
	dErrors.CodeBadRequest:          http.StatusBadRequest,
	dErrors.CodeInsufficientBalance: http.StatusConflict,
	dErrors.CodeInsufficientSupply:  http.StatusConflict,
	dErrors.CodeAlreadySet:          http.StatusConflict,
	dErrors.CodeSettlementFailure:   http.StatusBadGateway,
	dErrors.CodeConflict:            http.StatusConflict,
	dErrors.CodeTimeout:             http.StatusGatewayTimeout,
	dErrors.CodeInternal:            http.StatusInternalServerError,
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// StatusFor maps an error to its HTTP status. Uncoded errors are 500.
func StatusFor(err error) int {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCode[de.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError writes a coded error. Internal errors never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	var de *dErrors.Error
	if status == http.StatusInternalServerError || !errors.As(err, &de) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: string(dErrors.CodeInternal)})
		return
	}
	WriteJSON(w, status, ErrorResponse{Error: string(de.Code), ErrorDescription: de.Message})
}

// WriteJSON writes v as a JSON body with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Normalizable requests are trimmed before validation.
type Normalizable interface {
	Normalize()
}

// Validatable requests check and parse their own fields.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes a JSON body into T, then normalizes and validates
// it when T supports that. On failure the error response is already written
// and ok is false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) { //nolint:revive // ctx follows writer and request like the handlers that call it
	var req T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return nil, false
	}
	if n, ok := any(&req).(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			if logger != nil {
				logger.InfoContext(ctx, "request validation failed",
					"request_id", requestID,
					"error", err,
				)
			}
			WriteError(w, err)
			return nil, false
		}
	}
	return &req, true
}
