// Package postgres persists the ledger in PostgreSQL through pgx.
//
// RunInTx opens one transaction per call and takes a transaction-scoped
// advisory lock for every key in the LockSet before running the callback.
// Quantities are stored as BIGINT, so values above math.MaxInt64 are rejected
// by the driver.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"offsetledger/internal/ledger/models"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
	"offsetledger/pkg/platform/sentinel"
)

const defaultTxTimeout = 5 * time.Second

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements store.Store on a pgx pool.
type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// New constructs a PostgreSQL-backed ledger store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, timeout: defaultTxTimeout}
}

// RunInTx locks every key in ascending advisory-lock order, runs fn, and
// commits. Any error from fn rolls the transaction back.
func (s *Store) RunInTx(ctx context.Context, locks store.LockSet, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return translateErr(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, id := range advisoryIDs(locks) {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, id); err != nil {
			return translateErr(err, "acquire advisory lock")
		}
	}

	if err := fn(ctx, &pgTx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return translateErr(err, "commit transaction")
	}
	return nil
}

// advisoryIDs hashes lock keys and returns the distinct ids sorted, so every
// transaction acquires them in the same order.
func advisoryIDs(locks store.LockSet) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, k := range locks.Keys() {
		id := int64(store.Hash64(k)) //nolint:gosec // wraparound is fine for a lock id
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return ids
}

func translateErr(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+": context cancelled")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// -----------------------------------------------------------------------------
// Reader
// -----------------------------------------------------------------------------

func (s *Store) FindInitiative(ctx context.Context, id domain.InitiativeID) (*models.Initiative, error) {
	return getInitiative(ctx, s.pool, id)
}

func (s *Store) ListInitiatives(ctx context.Context, filter store.InitiativeFilter) ([]*models.Initiative, error) {
	rows, err := s.pool.Query(ctx, initiativeSelect+`
		WHERE ($1 = '' OR manager = $1) AND ($2 = '' OR status = $2)
		ORDER BY id`, string(filter.Manager), string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("list initiatives: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Initiative, 0)
	for rows.Next() {
		i, err := scanInitiative(rows)
		if err != nil {
			return nil, fmt.Errorf("scan initiative: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *Store) ListVerifications(ctx context.Context, id domain.InitiativeID) ([]*models.Verification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT initiative_id, seq, verifier, credits_issued, report_url, methodology,
		       period_start, period_end, evidence, recorded_at
		FROM verifications WHERE initiative_id = $1 ORDER BY seq`, uint64(id))
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Verification, 0)
	for rows.Next() {
		var v models.Verification
		if err := rows.Scan(&v.InitiativeID, &v.Seq, &v.Verifier, &v.CreditsIssued, &v.ReportURL,
			&v.Methodology, &v.PeriodStart, &v.PeriodEnd, &v.Evidence, &v.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (s *Store) FindBatch(ctx context.Context, id domain.BatchID) (*models.Batch, error) {
	return getBatch(ctx, s.pool, id)
}

func (s *Store) ListBatches(ctx context.Context, id domain.InitiativeID) ([]*models.Batch, error) {
	rows, err := s.pool.Query(ctx, batchSelect+` WHERE initiative_id = $1 ORDER BY id`, uint64(id))
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Batch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) FindHolding(ctx context.Context, key models.HoldingKey) (*models.Holding, error) {
	h, err := getHolding(ctx, s.pool, key)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, sentinel.ErrNotFound
	}
	return h, nil
}

func (s *Store) ListHoldings(ctx context.Context, owner domain.Principal) ([]*models.Holding, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT owner, initiative_id, vintage_year, balance, updated_at
		FROM holdings WHERE owner = $1 ORDER BY initiative_id, vintage_year`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Holding, 0)
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.Owner, &h.InitiativeID, &h.VintageYear, &h.Balance, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}

func (s *Store) SumHoldings(ctx context.Context, id domain.InitiativeID) (uint64, error) {
	var total uint64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0)::BIGINT FROM holdings WHERE initiative_id = $1`,
		uint64(id)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum holdings: %w", err)
	}
	return total, nil
}

func (s *Store) FindRetirement(ctx context.Context, id domain.RetirementID) (*models.Retirement, error) {
	return getRetirement(ctx, s.pool, id)
}

func (s *Store) ListRetirements(ctx context.Context, owner domain.Principal) ([]*models.Retirement, error) {
	rows, err := s.pool.Query(ctx, retirementSelect+` WHERE owner = $1 ORDER BY id`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list retirements: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Retirement, 0)
	for rows.Next() {
		r, err := scanRetirement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan retirement: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) FindVerifier(ctx context.Context, p domain.Principal) (*models.Verifier, error) {
	return getVerifier(ctx, s.pool, p)
}
