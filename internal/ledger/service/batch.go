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

// CreateBatch carves quantity out of the initiative's available supply into a
// sellable batch. Only the initiative's manager may do this.
func (s *Service) CreateBatch(ctx context.Context, caller domain.Principal, req models.CreateBatchRequest) (_ *models.Batch, err error) {
	ctx, done := s.begin(ctx, "create_batch",
		attribute.Int64("initiative_id", int64(req.InitiativeID))) //nolint:gosec // span label
	defer done(&err)

	var created *models.Batch
	err = s.store.RunInTx(ctx, store.Locks().Initiative(req.InitiativeID), func(ctx context.Context, tx store.Tx) error {
		i, err := tx.Initiative(ctx, req.InitiativeID)
		if err != nil {
			return err
		}
		ok, err := s.gate.Within(tx).IsInitiativeManager(ctx, caller, i.ID)
		if err != nil {
			return err
		}
		if !ok {
			return unauthorized("caller does not manage this initiative")
		}
		if err := i.CanIssueBatch(req.Quantity); err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		if _, err := models.NewBatch(0, i.ID, req.VintageYear, req.Quantity, req.UnitPrice, s.minVintage, now); err != nil {
			return err
		}
		id, err := tx.NextBatchID(ctx)
		if err != nil {
			return err
		}
		b, err := models.NewBatch(id, i.ID, req.VintageYear, req.Quantity, req.UnitPrice, s.minVintage, now)
		if err != nil {
			return err
		}
		if err := tx.InsertBatch(ctx, b); err != nil {
			return err
		}

		i.ApplyBatchIssued(b.Quantity, now)
		if err := tx.UpdateInitiative(ctx, i); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, translate(err, "initiative not found")
	}

	s.observeBatched(created.Quantity)
	s.logAudit(ctx, audit.EventBatchCreated,
		"actor", caller.String(),
		"subject", "batch/"+created.ID.String(),
		"initiative_id", uint64(created.InitiativeID),
		"quantity", created.Quantity,
		"amount", created.UnitPrice)
	return created, nil
}

// Purchase buys quantity out of a batch into the buyer's holding. Settlement
// with the initiative manager is the last step before any write, so a failed
// payment leaves the ledger untouched.
func (s *Service) Purchase(ctx context.Context, buyer domain.Principal, batchID domain.BatchID, quantity uint64) (_ *models.PurchaseReceipt, err error) {
	ctx, done := s.begin(ctx, "purchase",
		attribute.String("buyer", buyer.String()),
		attribute.Int64("batch_id", int64(batchID))) //nolint:gosec // span label
	defer done(&err)

	if buyer.IsZero() {
		return nil, unauthorized("caller is required")
	}

	// Initiative and vintage never change on a batch, so they can be read
	// before locking to name the buyer's holding.
	snapshot, err := s.store.FindBatch(ctx, batchID)
	if err != nil {
		return nil, translate(err, "batch not found")
	}
	key := models.HoldingKey{Owner: buyer, InitiativeID: snapshot.InitiativeID, VintageYear: snapshot.VintageYear}

	var (
		receipt       *models.PurchaseReceipt
		settlementErr error
	)
	err = s.store.RunInTx(ctx, store.Locks().Batch(batchID).Holding(key), func(ctx context.Context, tx store.Tx) error {
		b, err := tx.Batch(ctx, batchID)
		if err != nil {
			return err
		}
		amount, err := b.CanPurchase(quantity)
		if err != nil {
			return err
		}
		i, err := tx.Initiative(ctx, b.InitiativeID)
		if err != nil {
			return err
		}
		h, err := tx.Holding(ctx, key)
		if err != nil {
			return err
		}
		if err := h.CanCredit(quantity); err != nil {
			return err
		}

		if err := s.settler.Settle(ctx, amount, buyer, i.Manager); err != nil {
			settlementErr = err
			return dErrors.Wrap(err, dErrors.CodeSettlementFailure, "settlement failed")
		}

		now := requestcontext.Now(ctx)
		b.ApplyPurchase(quantity)
		if err := tx.UpdateBatch(ctx, b); err != nil {
			return err
		}
		h.ApplyCredit(quantity, now)
		if err := tx.PutHolding(ctx, h); err != nil {
			return err
		}

		receipt = &models.PurchaseReceipt{
			BatchID:      b.ID,
			InitiativeID: b.InitiativeID,
			VintageYear:  b.VintageYear,
			Buyer:        buyer,
			Payee:        i.Manager,
			Quantity:     quantity,
			Amount:       amount,
			Remaining:    b.Remaining,
			BatchStatus:  b.Status,
			Balance:      h.Balance,
		}
		return nil
	})
	if settlementErr != nil {
		s.incrementSettlementFailure()
		if s.logger != nil {
			s.logger.WarnContext(ctx, "purchase settlement failed",
				"batch_id", uint64(batchID),
				"buyer", buyer.String(),
				"quantity", quantity,
				"error", settlementErr)
		}
		s.logAudit(ctx, audit.EventSettlementFailed,
			"actor", buyer.String(),
			"subject", "batch/"+batchID.String(),
			"initiative_id", uint64(snapshot.InitiativeID),
			"quantity", quantity,
			"reason", settlementErr.Error())
	}
	if err != nil {
		return nil, translate(err, "batch not found")
	}

	s.observePurchased(receipt.Quantity)
	s.logAudit(ctx, audit.EventCreditsPurchased,
		"actor", buyer.String(),
		"subject", "batch/"+receipt.BatchID.String(),
		"initiative_id", uint64(receipt.InitiativeID),
		"counterparty", receipt.Payee.String(),
		"quantity", receipt.Quantity,
		"amount", receipt.Amount)
	return receipt, nil
}

// GetBatch returns the batch or CodeNotFound.
func (s *Service) GetBatch(ctx context.Context, id domain.BatchID) (*models.Batch, error) {
	b, err := s.store.FindBatch(ctx, id)
	if err != nil {
		return nil, translate(err, "batch not found")
	}
	return b, nil
}

func (s *Service) ListBatches(ctx context.Context, id domain.InitiativeID) ([]*models.Batch, error) {
	if _, err := s.store.FindInitiative(ctx, id); err != nil {
		return nil, translate(err, "initiative not found")
	}
	list, err := s.store.ListBatches(ctx, id)
	if err != nil {
		return nil, translate(err, "")
	}
	return list, nil
}
