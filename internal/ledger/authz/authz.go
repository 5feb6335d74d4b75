// Package authz answers who may act on the ledger. It only reads: the
// service decides what to do with the answers.
package authz

import (
	"context"
	"errors"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/domain"
	"offsetledger/pkg/platform/sentinel"
)

// Source is the record lookup the gate needs. store.Tx satisfies it, so the
// service can ask inside a transaction and see the locked state.
type Source interface {
	Verifier(ctx context.Context, p domain.Principal) (*models.Verifier, error)
	Initiative(ctx context.Context, id domain.InitiativeID) (*models.Initiative, error)
}

// Gate holds the configured administrators and a default record source.
type Gate struct {
	admins map[domain.Principal]struct{}
	src    Source
}

// New builds a gate over admins. src serves lookups made outside a transaction.
func New(admins []domain.Principal, src Source) *Gate {
	set := make(map[domain.Principal]struct{}, len(admins))
	for _, a := range admins {
		set[a] = struct{}{}
	}
	return &Gate{admins: set, src: src}
}

// Within returns a gate with the same administrators that reads from src.
func (g *Gate) Within(src Source) *Gate {
	return &Gate{admins: g.admins, src: src}
}

func (g *Gate) IsAdmin(p domain.Principal) bool {
	_, ok := g.admins[p]
	return ok
}

// IsAuthorizedVerifier reports whether p holds an active verifier record.
func (g *Gate) IsAuthorizedVerifier(ctx context.Context, p domain.Principal) (bool, error) {
	v, err := g.src.Verifier(ctx, p)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v.IsActive(), nil
}

// IsInitiativeManager reports whether p manages initiative id. An unknown
// initiative yields false.
func (g *Gate) IsInitiativeManager(ctx context.Context, p domain.Principal, id domain.InitiativeID) (bool, error) {
	i, err := g.src.Initiative(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return i.IsManagedBy(p), nil
}

// FromReader adapts a store.Reader to Source.
func FromReader(r store.Reader) Source {
	return readerSource{r: r}
}

type readerSource struct {
	r store.Reader
}

func (s readerSource) Verifier(ctx context.Context, p domain.Principal) (*models.Verifier, error) {
	return s.r.FindVerifier(ctx, p)
}

func (s readerSource) Initiative(ctx context.Context, id domain.InitiativeID) (*models.Initiative, error) {
	return s.r.FindInitiative(ctx, id)
}
