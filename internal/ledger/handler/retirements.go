package handler

import (
	"net/http"

	"offsetledger/pkg/platform/httputil"
)

func (h *Handler) handleRetire(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := decode[RetireRequest](w, r, h.logger)
	if !ok {
		return
	}
	retirement, err := h.service.Retire(r.Context(), caller, req.toModel())
	if err != nil {
		h.fail(w, r, "retire", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, retirement)
}

func (h *Handler) handleGetRetirement(w http.ResponseWriter, r *http.Request) {
	id, ok := retirementParam(w, r)
	if !ok {
		return
	}
	retirement, err := h.service.GetRetirement(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get_retirement", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, retirement)
}

func (h *Handler) handleListRetirements(w http.ResponseWriter, r *http.Request) {
	owner, ok := principalParam(w, r, "owner")
	if !ok {
		return
	}
	retirements, err := h.service.ListRetirements(r.Context(), owner)
	if err != nil {
		h.fail(w, r, "list_retirements", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, retirements)
}

func (h *Handler) handleAttachCertificate(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := retirementParam(w, r)
	if !ok {
		return
	}
	req, ok := decode[AttachCertificateRequest](w, r, h.logger)
	if !ok {
		return
	}
	retirement, err := h.service.AttachCertificate(r.Context(), caller, id, req.CertificateURL)
	if err != nil {
		h.fail(w, r, "attach_certificate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, retirement)
}
