package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
	"offsetledger/pkg/platform/audit"
	"offsetledger/pkg/requestcontext"
)

// Retire permanently removes quantity from the caller's holding and adds it to
// the initiative's retired counter. Nothing ever reverses a retirement.
func (s *Service) Retire(ctx context.Context, caller domain.Principal, req models.RetireRequest) (_ *models.Retirement, err error) {
	ctx, done := s.begin(ctx, "retire",
		attribute.String("owner", caller.String()),
		attribute.Int64("initiative_id", int64(req.InitiativeID))) //nolint:gosec // span label
	defer done(&err)

	if caller.IsZero() {
		return nil, unauthorized("caller is required")
	}
	req.Normalize()
	if req.Quantity == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "retirement quantity must be positive")
	}
	if req.Reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "retirement reason cannot be empty")
	}
	if req.Beneficiary != nil && *req.Beneficiary == caller {
		return nil, dErrors.New(dErrors.CodeValidation, "beneficiary must differ from owner")
	}

	key := models.HoldingKey{Owner: caller, InitiativeID: req.InitiativeID, VintageYear: req.VintageYear}
	var created *models.Retirement
	err = s.store.RunInTx(ctx, store.Locks().Initiative(req.InitiativeID).Holding(key), func(ctx context.Context, tx store.Tx) error {
		i, err := tx.Initiative(ctx, req.InitiativeID)
		if err != nil {
			return err
		}
		h, err := tx.Holding(ctx, key)
		if err != nil {
			return err
		}
		if err := h.CanDebit(req.Quantity); err != nil {
			return err
		}
		if req.BatchID != nil {
			b, err := tx.Batch(ctx, *req.BatchID)
			if err != nil {
				return translate(err, "batch not found")
			}
			if b.InitiativeID != key.InitiativeID || b.VintageYear != key.VintageYear {
				return dErrors.New(dErrors.CodeValidation, "batch does not belong to this initiative and vintage")
			}
		}

		now := requestcontext.Now(ctx)
		id, err := tx.NextRetirementID(ctx)
		if err != nil {
			return err
		}
		r, err := models.NewRetirement(id, caller, key, req.BatchID, req.Quantity, req.Reason, req.Beneficiary, now)
		if err != nil {
			return err
		}

		h.ApplyDebit(req.Quantity, now)
		if err := tx.PutHolding(ctx, h); err != nil {
			return err
		}
		i.ApplyRetirement(req.Quantity, now)
		if err := tx.UpdateInitiative(ctx, i); err != nil {
			return err
		}
		if err := tx.InsertRetirement(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, translate(err, "initiative not found")
	}

	counterparty := ""
	if created.Beneficiary != nil {
		counterparty = created.Beneficiary.String()
	}
	s.observeRetired(created.Quantity)
	s.logAudit(ctx, audit.EventCreditsRetired,
		"actor", caller.String(),
		"subject", "retirement/"+created.ID.String(),
		"initiative_id", uint64(created.InitiativeID),
		"counterparty", counterparty,
		"quantity", created.Quantity,
		"reason", created.Reason)
	return created, nil
}

// AttachCertificate sets a retirement's certificate. Only administrators may
// attach one, and only once.
func (s *Service) AttachCertificate(ctx context.Context, caller domain.Principal, id domain.RetirementID, url string) (_ *models.Retirement, err error) {
	ctx, done := s.begin(ctx, "attach_certificate")
	defer done(&err)

	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}

	var updated *models.Retirement
	err = s.store.RunInTx(ctx, store.Locks().Retirement(id), func(ctx context.Context, tx store.Tx) error {
		r, err := tx.Retirement(ctx, id)
		if err != nil {
			return err
		}
		if err := r.CanAttachCertificate(url); err != nil {
			return err
		}
		r.ApplyCertificate(url)
		if err := tx.UpdateRetirement(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, translate(err, "retirement not found")
	}

	s.logAudit(ctx, audit.EventCertificateAttached,
		"actor", caller.String(),
		"subject", "retirement/"+id.String(),
		"initiative_id", uint64(updated.InitiativeID),
		"reason", *updated.CertificateURL)
	return updated, nil
}

// GetRetirement returns the retirement or CodeNotFound.
func (s *Service) GetRetirement(ctx context.Context, id domain.RetirementID) (*models.Retirement, error) {
	r, err := s.store.FindRetirement(ctx, id)
	if err != nil {
		return nil, translate(err, "retirement not found")
	}
	return r, nil
}

func (s *Service) ListRetirements(ctx context.Context, owner domain.Principal) ([]*models.Retirement, error) {
	list, err := s.store.ListRetirements(ctx, owner)
	if err != nil {
		return nil, translate(err, "")
	}
	return list, nil
}
