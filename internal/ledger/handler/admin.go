package handler

import (
	"net/http"

	"offsetledger/internal/ledger/models"
	"offsetledger/pkg/platform/httputil"
)

func (h *Handler) handleAuthorizeVerifier(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	verifier, ok := principalParam(w, r, "principal")
	if !ok {
		return
	}
	req, ok := decode[AuthorizeVerifierRequest](w, r, h.logger)
	if !ok {
		return
	}
	v, err := h.service.AuthorizeVerifier(r.Context(), caller, models.AuthorizeVerifierRequest{
		Verifier:     verifier,
		Organization: req.Organization,
		Credentials:  req.Credentials,
	})
	if err != nil {
		h.fail(w, r, "authorize_verifier", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleRevokeVerifier(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	verifier, ok := principalParam(w, r, "principal")
	if !ok {
		return
	}
	v, err := h.service.RevokeVerifier(r.Context(), caller, verifier)
	if err != nil {
		h.fail(w, r, "revoke_verifier", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleUpdateInitiativeStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := initiativeParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := decode[UpdateStatusRequest](w, r, h.logger)
	if !ok {
		return
	}
	initiative, err := h.service.UpdateInitiativeStatus(r.Context(), caller, id, req.status)
	if err != nil {
		h.fail(w, r, "update_initiative_status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, initiative)
}
