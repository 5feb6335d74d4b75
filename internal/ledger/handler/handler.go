// Package handler exposes the ledger service over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
	"offsetledger/pkg/platform/httputil"
	"offsetledger/pkg/requestcontext"
)

// Service is the ledger surface the HTTP layer depends on.
type Service interface {
	RegisterInitiative(ctx context.Context, caller domain.Principal, req models.RegisterInitiativeRequest) (*models.Initiative, error)
	GetInitiative(ctx context.Context, id domain.InitiativeID) (*models.Initiative, error)
	ListInitiatives(ctx context.Context, filter store.InitiativeFilter) ([]*models.Initiative, error)
	UpdateInitiativeStatus(ctx context.Context, caller domain.Principal, id domain.InitiativeID, status models.InitiativeStatus) (*models.Initiative, error)
	Reconcile(ctx context.Context, id domain.InitiativeID) (*models.Reconciliation, error)

	RecordVerification(ctx context.Context, caller domain.Principal, req models.RecordVerificationRequest) (*models.Verification, error)
	ListVerifications(ctx context.Context, id domain.InitiativeID) ([]*models.Verification, error)

	CreateBatch(ctx context.Context, caller domain.Principal, req models.CreateBatchRequest) (*models.Batch, error)
	Purchase(ctx context.Context, buyer domain.Principal, batchID domain.BatchID, quantity uint64) (*models.PurchaseReceipt, error)
	GetBatch(ctx context.Context, id domain.BatchID) (*models.Batch, error)
	ListBatches(ctx context.Context, id domain.InitiativeID) ([]*models.Batch, error)

	GetBalance(ctx context.Context, owner domain.Principal, id domain.InitiativeID, vintage domain.VintageYear) (uint64, error)
	ListHoldings(ctx context.Context, owner domain.Principal) ([]*models.Holding, error)
	Transfer(ctx context.Context, caller domain.Principal, req models.TransferRequest) error

	Retire(ctx context.Context, caller domain.Principal, req models.RetireRequest) (*models.Retirement, error)
	AttachCertificate(ctx context.Context, caller domain.Principal, id domain.RetirementID, url string) (*models.Retirement, error)
	GetRetirement(ctx context.Context, id domain.RetirementID) (*models.Retirement, error)
	ListRetirements(ctx context.Context, owner domain.Principal) ([]*models.Retirement, error)

	AuthorizeVerifier(ctx context.Context, caller domain.Principal, req models.AuthorizeVerifierRequest) (*models.Verifier, error)
	RevokeVerifier(ctx context.Context, caller domain.Principal, verifier domain.Principal) (*models.Verifier, error)
}

// Handler serves the ledger routes. Every route expects an authenticated
// principal in the request context.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the ledger routes on r. Authentication and idempotency
// middleware are applied by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/initiatives", func(r chi.Router) {
		r.Post("/", h.handleRegisterInitiative)
		r.Get("/", h.handleListInitiatives)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetInitiative)
			r.Get("/reconciliation", h.handleReconcile)
			r.Post("/verifications", h.handleRecordVerification)
			r.Get("/verifications", h.handleListVerifications)
			r.Post("/batches", h.handleCreateBatch)
			r.Get("/batches", h.handleListBatches)
		})
	})

	r.Get("/batches/{id}", h.handleGetBatch)
	r.Post("/batches/{id}/purchase", h.handlePurchase)

	r.Post("/transfers", h.handleTransfer)
	r.Get("/holdings/{owner}", h.handleListHoldings)
	r.Get("/holdings/{owner}/{initiativeID}/{vintage}", h.handleGetBalance)

	r.Post("/retirements", h.handleRetire)
	r.Get("/retirements/{id}", h.handleGetRetirement)
	r.Post("/retirements/{id}/certificate", h.handleAttachCertificate)
	r.Get("/owners/{owner}/retirements", h.handleListRetirements)

	r.Route("/admin", func(r chi.Router) {
		r.Put("/verifiers/{principal}", h.handleAuthorizeVerifier)
		r.Delete("/verifiers/{principal}", h.handleRevokeVerifier)
		r.Patch("/initiatives/{id}/status", h.handleUpdateInitiativeStatus)
	})
}

// caller returns the authenticated principal or writes 401.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p := requestcontext.Principal(r.Context())
	if p.IsZero() {
		h.logger.ErrorContext(r.Context(), "principal missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return p, true
}

// fail logs err at a level matching its code and writes the error response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	attrs := []any{
		"op", op,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	}
	if httputil.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "ledger operation failed", attrs...)
	} else {
		h.logger.InfoContext(ctx, "ledger operation rejected", attrs...)
	}
	httputil.WriteError(w, err)
}

func decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	ctx := r.Context()
	return httputil.DecodeAndPrepare[T](w, r, logger, ctx, requestcontext.RequestID(ctx))
}

func initiativeParam(w http.ResponseWriter, r *http.Request, name string) (domain.InitiativeID, bool) {
	id, err := domain.ParseInitiativeID(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

func batchParam(w http.ResponseWriter, r *http.Request) (domain.BatchID, bool) {
	id, err := domain.ParseBatchID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

func retirementParam(w http.ResponseWriter, r *http.Request) (domain.RetirementID, bool) {
	id, err := domain.ParseRetirementID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

func principalParam(w http.ResponseWriter, r *http.Request, name string) (domain.Principal, bool) {
	p, err := domain.ParsePrincipal(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return p, true
}
