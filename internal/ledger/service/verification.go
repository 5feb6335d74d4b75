package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/domain"
	"offsetledger/pkg/platform/audit"
	"offsetledger/pkg/requestcontext"
)

// RecordVerification appends a verification and mints its credits into the
// initiative's un-batched supply. The first verification activates the
// initiative.
//
// Checks run in this order: caller is an active verifier, initiative exists,
// initiative accepts verification, the supply has room, then the report fields.
func (s *Service) RecordVerification(ctx context.Context, caller domain.Principal,
	req models.RecordVerificationRequest) (_ *models.Verification, err error) {
	ctx, done := s.begin(ctx, "record_verification",
		attribute.String("verifier", caller.String()),
		attribute.Int64("initiative_id", int64(req.InitiativeID))) //nolint:gosec // span label
	defer done(&err)

	locks := store.Locks().Initiative(req.InitiativeID).Verifier(caller)
	var recorded *models.Verification
	err = s.store.RunInTx(ctx, locks, func(ctx context.Context, tx store.Tx) error {
		ok, err := s.gate.Within(tx).IsAuthorizedVerifier(ctx, caller)
		if err != nil {
			return err
		}
		if !ok {
			return unauthorized("caller is not an authorized verifier")
		}

		i, err := tx.Initiative(ctx, req.InitiativeID)
		if err != nil {
			return err
		}
		if err := i.CanVerify(s.reverification); err != nil {
			return err
		}
		if err := i.CanMint(req.CreditsIssued); err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		if _, err := models.NewVerification(i.ID, 0, caller, req.CreditsIssued, req.ReportURL, req.Methodology,
			req.PeriodStart, req.PeriodEnd, req.Evidence, now); err != nil {
			return err
		}
		seq, err := tx.NextVerificationSeq(ctx, i.ID)
		if err != nil {
			return err
		}
		v, err := models.NewVerification(i.ID, seq, caller, req.CreditsIssued, req.ReportURL, req.Methodology,
			req.PeriodStart, req.PeriodEnd, req.Evidence, now)
		if err != nil {
			return err
		}
		if err := tx.InsertVerification(ctx, v); err != nil {
			return err
		}

		i.ApplyVerification(v.CreditsIssued, now)
		if err := tx.UpdateInitiative(ctx, i); err != nil {
			return err
		}
		recorded = v
		return nil
	})
	if err != nil {
		return nil, translate(err, "initiative not found")
	}

	s.observeIssued(recorded.CreditsIssued)
	s.logAudit(ctx, audit.EventVerificationRecorded,
		"actor", caller.String(),
		"subject", "initiative/"+recorded.InitiativeID.String(),
		"initiative_id", uint64(recorded.InitiativeID),
		"quantity", recorded.CreditsIssued,
		"reason", recorded.Methodology)
	return recorded, nil
}

// ListVerifications returns an initiative's verifications ordered by sequence.
func (s *Service) ListVerifications(ctx context.Context, id domain.InitiativeID) ([]*models.Verification, error) {
	if _, err := s.store.FindInitiative(ctx, id); err != nil {
		return nil, translate(err, "initiative not found")
	}
	list, err := s.store.ListVerifications(ctx, id)
	if err != nil {
		return nil, translate(err, "")
	}
	return list, nil
}
