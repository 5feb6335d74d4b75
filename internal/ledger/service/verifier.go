package service

import (
	"context"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/domain"
	"offsetledger/pkg/platform/audit"
	"offsetledger/pkg/requestcontext"
)

// AuthorizeVerifier creates or re-activates a verifier record.
func (s *Service) AuthorizeVerifier(ctx context.Context, caller domain.Principal, req models.AuthorizeVerifierRequest) (_ *models.Verifier, err error) {
	ctx, done := s.begin(ctx, "authorize_verifier")
	defer done(&err)

	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}

	var stored *models.Verifier
	err = s.store.RunInTx(ctx, store.Locks().Verifier(req.Verifier), func(ctx context.Context, tx store.Tx) error {
		v, err := models.NewVerifier(req.Verifier, req.Organization, req.Credentials, caller, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := tx.PutVerifier(ctx, v); err != nil {
			return err
		}
		stored = v
		return nil
	})
	if err != nil {
		return nil, translate(err, "verifier not found")
	}

	s.logAudit(ctx, audit.EventVerifierAuthorized,
		"actor", caller.String(),
		"subject", "verifier/"+stored.Principal.String(),
		"counterparty", stored.Principal.String(),
		"reason", stored.Organization)
	return stored, nil
}

// RevokeVerifier deactivates a verifier. Verifications it already recorded
// stand.
func (s *Service) RevokeVerifier(ctx context.Context, caller domain.Principal, verifier domain.Principal) (_ *models.Verifier, err error) {
	ctx, done := s.begin(ctx, "revoke_verifier")
	defer done(&err)

	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}

	var revoked *models.Verifier
	err = s.store.RunInTx(ctx, store.Locks().Verifier(verifier), func(ctx context.Context, tx store.Tx) error {
		v, err := tx.Verifier(ctx, verifier)
		if err != nil {
			return err
		}
		if err := v.CanRevoke(); err != nil {
			return err
		}
		v.ApplyRevocation(requestcontext.Now(ctx))
		if err := tx.PutVerifier(ctx, v); err != nil {
			return err
		}
		revoked = v
		return nil
	})
	if err != nil {
		return nil, translate(err, "verifier not found")
	}

	s.logAudit(ctx, audit.EventVerifierRevoked,
		"actor", caller.String(),
		"subject", "verifier/"+verifier.String(),
		"counterparty", verifier.String())
	return revoked, nil
}

func (s *Service) GetVerifier(ctx context.Context, verifier domain.Principal) (*models.Verifier, error) {
	v, err := s.store.FindVerifier(ctx, verifier)
	if err != nil {
		return nil, translate(err, "verifier not found")
	}
	return v, nil
}

// IsAdmin exposes the configured administrator check to transports.
func (s *Service) IsAdmin(p domain.Principal) bool {
	return s.gate.IsAdmin(p)
}

// IsAuthorizedVerifier reports whether p holds an active verifier record.
func (s *Service) IsAuthorizedVerifier(ctx context.Context, p domain.Principal) (bool, error) {
	ok, err := s.gate.IsAuthorizedVerifier(ctx, p)
	if err != nil {
		return false, translate(err, "")
	}
	return ok, nil
}

// IsInitiativeManager reports whether p manages initiative id. Unknown
// initiatives yield false.
func (s *Service) IsInitiativeManager(ctx context.Context, p domain.Principal, id domain.InitiativeID) (bool, error) {
	ok, err := s.gate.IsInitiativeManager(ctx, p, id)
	if err != nil {
		return false, translate(err, "")
	}
	return ok, nil
}
