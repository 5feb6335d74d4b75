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

// RegisterInitiative creates a pending initiative managed by caller.
func (s *Service) RegisterInitiative(ctx context.Context, caller domain.Principal, req models.RegisterInitiativeRequest) (_ *models.Initiative, err error) {
	ctx, done := s.begin(ctx, "register_initiative")
	defer done(&err)

	if caller.IsZero() {
		return nil, unauthorized("caller is required")
	}
	req.Normalize()
	category, err := s.categories.Parse(req.Category)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	// Validate before taking an id so a rejected request does not burn one.
	if _, err := models.NewInitiative(0, caller, req.Name, req.Description, req.Location,
		req.DocumentationURL, category, req.StartDate, req.EndDate, now); err != nil {
		return nil, translate(err, "")
	}

	var created *models.Initiative
	err = s.store.RunInTx(ctx, store.Locks(), func(ctx context.Context, tx store.Tx) error {
		id, err := tx.NextInitiativeID(ctx)
		if err != nil {
			return err
		}
		i, err := models.NewInitiative(id, caller, req.Name, req.Description, req.Location,
			req.DocumentationURL, category, req.StartDate, req.EndDate, now)
		if err != nil {
			return err
		}
		if err := tx.InsertInitiative(ctx, i); err != nil {
			return err
		}
		created = i
		return nil
	})
	if err != nil {
		return nil, translate(err, "initiative not found")
	}

	s.logAudit(ctx, audit.EventInitiativeRegistered,
		"actor", caller.String(),
		"subject", "initiative/"+created.ID.String(),
		"initiative_id", uint64(created.ID),
		"category", string(created.Category))
	return created, nil
}

// GetInitiative returns the initiative or CodeNotFound.
func (s *Service) GetInitiative(ctx context.Context, id domain.InitiativeID) (*models.Initiative, error) {
	i, err := s.store.FindInitiative(ctx, id)
	if err != nil {
		return nil, translate(err, "initiative not found")
	}
	return i, nil
}

func (s *Service) ListInitiatives(ctx context.Context, filter store.InitiativeFilter) ([]*models.Initiative, error) {
	list, err := s.store.ListInitiatives(ctx, filter)
	if err != nil {
		return nil, translate(err, "")
	}
	return list, nil
}

// UpdateInitiativeStatus lets an administrator suspend, resume or complete an
// active initiative. Pending initiatives only activate through verification.
func (s *Service) UpdateInitiativeStatus(ctx context.Context, caller domain.Principal, id domain.InitiativeID,
	status models.InitiativeStatus) (_ *models.Initiative, err error) {
	ctx, done := s.begin(ctx, "update_initiative_status", attribute.Int64("initiative_id", int64(id))) //nolint:gosec // span label
	defer done(&err)

	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}

	var (
		updated *models.Initiative
		from    models.InitiativeStatus
	)
	err = s.store.RunInTx(ctx, store.Locks().Initiative(id), func(ctx context.Context, tx store.Tx) error {
		i, err := tx.Initiative(ctx, id)
		if err != nil {
			return err
		}
		if err := i.CanChangeStatus(status); err != nil {
			return err
		}
		from = i.Status
		i.ApplyStatus(status, requestcontext.Now(ctx))
		if err := tx.UpdateInitiative(ctx, i); err != nil {
			return err
		}
		updated = i
		return nil
	})
	if err != nil {
		return nil, translate(err, "initiative not found")
	}

	s.logAudit(ctx, audit.EventInitiativeStatusChanged,
		"actor", caller.String(),
		"subject", "initiative/"+id.String(),
		"initiative_id", uint64(id),
		"reason", string(from)+"->"+string(status))
	return updated, nil
}

// Reconcile evaluates the conservation law for one initiative from committed
// state. Reads are not taken under a single lock, so a reconciliation racing
// a mutation may observe it half-applied and report Balanced=false.
func (s *Service) Reconcile(ctx context.Context, id domain.InitiativeID) (_ *models.Reconciliation, err error) {
	ctx, done := s.begin(ctx, "reconcile")
	defer done(&err)

	i, err := s.store.FindInitiative(ctx, id)
	if err != nil {
		return nil, translate(err, "initiative not found")
	}
	batches, err := s.store.ListBatches(ctx, id)
	if err != nil {
		return nil, translate(err, "")
	}
	var issued, remaining uint64
	for _, b := range batches {
		issued += b.Quantity
		remaining += b.Remaining
	}
	held, err := s.store.SumHoldings(ctx, id)
	if err != nil {
		return nil, translate(err, "")
	}

	r := models.NewReconciliation(i, issued, remaining, held)
	if !r.Balanced && s.logger != nil {
		s.logger.WarnContext(ctx, "initiative does not reconcile",
			"initiative_id", uint64(id),
			"total", r.Total,
			"available", r.Available,
			"batch_remaining", r.BatchRemaining,
			"held", r.Held,
			"retired", r.Retired)
	}
	return r, nil
}
