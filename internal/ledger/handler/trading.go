package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"offsetledger/pkg/domain"
	"offsetledger/pkg/platform/httputil"
)

func (h *Handler) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := initiativeParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := decode[CreateBatchRequest](w, r, h.logger)
	if !ok {
		return
	}
	batch, err := h.service.CreateBatch(r.Context(), caller, req.toModel(id))
	if err != nil {
		h.fail(w, r, "create_batch", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, batch)
}

func (h *Handler) handleListBatches(w http.ResponseWriter, r *http.Request) {
	id, ok := initiativeParam(w, r, "id")
	if !ok {
		return
	}
	batches, err := h.service.ListBatches(r.Context(), id)
	if err != nil {
		h.fail(w, r, "list_batches", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, batches)
}

func (h *Handler) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := batchParam(w, r)
	if !ok {
		return
	}
	batch, err := h.service.GetBatch(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get_batch", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, batch)
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	buyer, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := batchParam(w, r)
	if !ok {
		return
	}
	req, ok := decode[PurchaseRequest](w, r, h.logger)
	if !ok {
		return
	}
	receipt, err := h.service.Purchase(r.Context(), buyer, id, req.Quantity)
	if err != nil {
		h.fail(w, r, "purchase", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, receipt)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := decode[TransferRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := h.service.Transfer(r.Context(), caller, req.toModel()); err != nil {
		h.fail(w, r, "transfer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	owner, ok := principalParam(w, r, "owner")
	if !ok {
		return
	}
	holdings, err := h.service.ListHoldings(r.Context(), owner)
	if err != nil {
		h.fail(w, r, "list_holdings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, holdings)
}

func (h *Handler) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	owner, ok := principalParam(w, r, "owner")
	if !ok {
		return
	}
	id, ok := initiativeParam(w, r, "initiativeID")
	if !ok {
		return
	}
	vintage, err := domain.ParseVintageYear(chi.URLParam(r, "vintage"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	balance, err := h.service.GetBalance(r.Context(), owner, id, vintage)
	if err != nil {
		h.fail(w, r, "get_balance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{
		Owner:        owner,
		InitiativeID: id,
		VintageYear:  vintage,
		Balance:      balance,
	})
}
