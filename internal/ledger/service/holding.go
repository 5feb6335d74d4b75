package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
	"offsetledger/pkg/platform/audit"
	"offsetledger/pkg/platform/sentinel"
	"offsetledger/pkg/requestcontext"
)

// GetBalance returns the owner's balance on one holding line. An absent
// holding reads as zero; only store failures are errors.
func (s *Service) GetBalance(ctx context.Context, owner domain.Principal, id domain.InitiativeID, vintage domain.VintageYear) (uint64, error) {
	h, err := s.store.FindHolding(ctx, models.HoldingKey{Owner: owner, InitiativeID: id, VintageYear: vintage})
	if errors.Is(err, sentinel.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, translate(err, "")
	}
	return h.Balance, nil
}

// ListHoldings returns every holding line of owner, including drained ones.
func (s *Service) ListHoldings(ctx context.Context, owner domain.Principal) ([]*models.Holding, error) {
	list, err := s.store.ListHoldings(ctx, owner)
	if err != nil {
		return nil, translate(err, "")
	}
	return list, nil
}

// Transfer moves credits from the caller to req.To on the same initiative and
// vintage. A self-transfer is checked like any other and then changes nothing.
func (s *Service) Transfer(ctx context.Context, caller domain.Principal, req models.TransferRequest) (err error) {
	ctx, done := s.begin(ctx, "transfer",
		attribute.String("from", caller.String()),
		attribute.String("to", req.To.String()))
	defer done(&err)

	if caller.IsZero() {
		return unauthorized("caller is required")
	}
	if req.To.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "recipient is required")
	}
	if req.Quantity == 0 {
		return dErrors.New(dErrors.CodeValidation, "transfer quantity must be positive")
	}

	fromKey := models.HoldingKey{Owner: caller, InitiativeID: req.InitiativeID, VintageYear: req.VintageYear}
	toKey := fromKey.WithOwner(req.To)

	err = s.store.RunInTx(ctx, store.Locks().Holding(fromKey).Holding(toKey), func(ctx context.Context, tx store.Tx) error {
		from, err := tx.Holding(ctx, fromKey)
		if err != nil {
			return err
		}
		if err := from.CanDebit(req.Quantity); err != nil {
			return err
		}
		if fromKey == toKey {
			return nil
		}
		to, err := tx.Holding(ctx, toKey)
		if err != nil {
			return err
		}
		if err := to.CanCredit(req.Quantity); err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		from.ApplyDebit(req.Quantity, now)
		to.ApplyCredit(req.Quantity, now)
		if err := tx.PutHolding(ctx, from); err != nil {
			return err
		}
		return tx.PutHolding(ctx, to)
	})
	if err != nil {
		return translate(err, "holding not found")
	}

	if fromKey != toKey {
		s.observeTransferred(req.Quantity)
	}
	s.logAudit(ctx, audit.EventCreditsTransferred,
		"actor", caller.String(),
		"subject", "initiative/"+req.InitiativeID.String()+"/"+req.VintageYear.String(),
		"initiative_id", uint64(req.InitiativeID),
		"counterparty", req.To.String(),
		"quantity", req.Quantity)
	return nil
}
