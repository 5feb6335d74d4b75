package handler

import (
	"net/http"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/domain"
	"offsetledger/pkg/platform/httputil"
)

func (h *Handler) handleRegisterInitiative(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := decode[RegisterInitiativeRequest](w, r, h.logger)
	if !ok {
		return
	}
	initiative, err := h.service.RegisterInitiative(r.Context(), caller, req.toModel())
	if err != nil {
		h.fail(w, r, "register_initiative", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, initiative)
}

func (h *Handler) handleListInitiatives(w http.ResponseWriter, r *http.Request) {
	var filter store.InitiativeFilter
	q := r.URL.Query()
	if raw := q.Get("manager"); raw != "" {
		manager, err := domain.ParsePrincipal(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Manager = manager
	}
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseInitiativeStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}

	initiatives, err := h.service.ListInitiatives(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "list_initiatives", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, initiatives)
}

func (h *Handler) handleGetInitiative(w http.ResponseWriter, r *http.Request) {
	id, ok := initiativeParam(w, r, "id")
	if !ok {
		return
	}
	initiative, err := h.service.GetInitiative(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get_initiative", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, initiative)
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := initiativeParam(w, r, "id")
	if !ok {
		return
	}
	rec, err := h.service.Reconcile(r.Context(), id)
	if err != nil {
		h.fail(w, r, "reconcile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleRecordVerification(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := initiativeParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := decode[RecordVerificationRequest](w, r, h.logger)
	if !ok {
		return
	}
	v, err := h.service.RecordVerification(r.Context(), caller, req.toModel(id))
	if err != nil {
		h.fail(w, r, "record_verification", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleListVerifications(w http.ResponseWriter, r *http.Request) {
	id, ok := initiativeParam(w, r, "id")
	if !ok {
		return
	}
	vs, err := h.service.ListVerifications(r.Context(), id)
	if err != nil {
		h.fail(w, r, "list_verifications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, vs)
}
