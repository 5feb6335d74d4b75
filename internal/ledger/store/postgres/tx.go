package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"offsetledger/internal/ledger/models"
	"offsetledger/pkg/domain"
	"offsetledger/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// pgTx adapts a pgx transaction to store.Tx.
type pgTx struct {
	q querier
}

func (t *pgTx) nextval(ctx context.Context, table string) (uint64, error) {
	var id uint64
	err := t.q.QueryRow(ctx, `SELECT nextval(pg_get_serial_sequence($1, 'id'))`, table).Scan(&id)
	if err != nil {
		return 0, translateErr(err, "allocate "+table+" id")
	}
	return id, nil
}

func (t *pgTx) NextInitiativeID(ctx context.Context) (domain.InitiativeID, error) {
	id, err := t.nextval(ctx, "initiatives")
	return domain.InitiativeID(id), err
}

func (t *pgTx) NextBatchID(ctx context.Context) (domain.BatchID, error) {
	id, err := t.nextval(ctx, "batches")
	return domain.BatchID(id), err
}

func (t *pgTx) NextRetirementID(ctx context.Context) (domain.RetirementID, error) {
	id, err := t.nextval(ctx, "retirements")
	return domain.RetirementID(id), err
}

// NextVerificationSeq bumps the per-initiative counter. Callers hold the
// initiative lock, so the increment is serialised.
func (t *pgTx) NextVerificationSeq(ctx context.Context, id domain.InitiativeID) (domain.VerificationSeq, error) {
	var seq uint64
	err := t.q.QueryRow(ctx, `
		UPDATE initiatives SET next_verification_seq = next_verification_seq + 1
		WHERE id = $1
		RETURNING next_verification_seq`, uint64(id)).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, translateErr(err, "allocate verification seq")
	}
	return domain.VerificationSeq(seq), nil
}

func (t *pgTx) InsertInitiative(ctx context.Context, i *models.Initiative) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO initiatives (id, name, description, location, documentation_url, manager, category,
			start_date, end_date, total_credits, available_credits, retired_credits, verified, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		uint64(i.ID), i.Name, i.Description, i.Location, i.DocumentationURL, string(i.Manager), string(i.Category),
		i.StartDate, i.EndDate, i.TotalCredits, i.AvailableCredits, i.RetiredCredits, i.Verified,
		string(i.Status), i.CreatedAt, i.UpdatedAt)
	return insertErr(err, "insert initiative")
}

func (t *pgTx) Initiative(ctx context.Context, id domain.InitiativeID) (*models.Initiative, error) {
	return getInitiative(ctx, t.q, id)
}

func (t *pgTx) UpdateInitiative(ctx context.Context, i *models.Initiative) error {
	tag, err := t.q.Exec(ctx, `
		UPDATE initiatives SET total_credits = $2, available_credits = $3, retired_credits = $4,
			verified = $5, status = $6, updated_at = $7
		WHERE id = $1`,
		uint64(i.ID), i.TotalCredits, i.AvailableCredits, i.RetiredCredits, i.Verified, string(i.Status), i.UpdatedAt)
	if err != nil {
		return translateErr(err, "update initiative")
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (t *pgTx) InsertVerification(ctx context.Context, v *models.Verification) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO verifications (initiative_id, seq, verifier, credits_issued, report_url, methodology,
			period_start, period_end, evidence, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uint64(v.InitiativeID), uint64(v.Seq), string(v.Verifier), v.CreditsIssued, v.ReportURL, v.Methodology,
		v.PeriodStart, v.PeriodEnd, v.Evidence, v.RecordedAt)
	return insertErr(err, "insert verification")
}

func (t *pgTx) InsertBatch(ctx context.Context, b *models.Batch) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO batches (id, initiative_id, vintage_year, quantity, remaining, unit_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uint64(b.ID), uint64(b.InitiativeID), int32(b.VintageYear), b.Quantity, b.Remaining, b.UnitPrice,
		string(b.Status), b.CreatedAt)
	return insertErr(err, "insert batch")
}

func (t *pgTx) Batch(ctx context.Context, id domain.BatchID) (*models.Batch, error) {
	return getBatch(ctx, t.q, id)
}

func (t *pgTx) UpdateBatch(ctx context.Context, b *models.Batch) error {
	tag, err := t.q.Exec(ctx, `UPDATE batches SET remaining = $2, status = $3 WHERE id = $1`,
		uint64(b.ID), b.Remaining, string(b.Status))
	if err != nil {
		return translateErr(err, "update batch")
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (t *pgTx) Holding(ctx context.Context, key models.HoldingKey) (*models.Holding, error) {
	h, err := getHolding(ctx, t.q, key)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return models.NewHolding(key), nil
	}
	return h, nil
}

func (t *pgTx) PutHolding(ctx context.Context, h *models.Holding) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO holdings (owner, initiative_id, vintage_year, balance, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner, initiative_id, vintage_year) DO UPDATE SET
			balance = EXCLUDED.balance,
			updated_at = EXCLUDED.updated_at`,
		string(h.Owner), uint64(h.InitiativeID), int32(h.VintageYear), h.Balance, h.UpdatedAt)
	if err != nil {
		return translateErr(err, "put holding")
	}
	return nil
}

func (t *pgTx) InsertRetirement(ctx context.Context, r *models.Retirement) error {
	var batchID *uint64
	if r.BatchID != nil {
		v := uint64(*r.BatchID)
		batchID = &v
	}
	var beneficiary *string
	if r.Beneficiary != nil {
		v := string(*r.Beneficiary)
		beneficiary = &v
	}
	_, err := t.q.Exec(ctx, `
		INSERT INTO retirements (id, owner, initiative_id, vintage_year, batch_id, quantity, reason,
			beneficiary, retired_at, certificate_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uint64(r.ID), string(r.Owner), uint64(r.InitiativeID), int32(r.VintageYear), batchID, r.Quantity,
		r.Reason, beneficiary, r.RetiredAt, r.CertificateURL)
	return insertErr(err, "insert retirement")
}

func (t *pgTx) Retirement(ctx context.Context, id domain.RetirementID) (*models.Retirement, error) {
	return getRetirement(ctx, t.q, id)
}

// UpdateRetirement only ever writes the certificate; the rest of the row is
// immutable once inserted.
func (t *pgTx) UpdateRetirement(ctx context.Context, r *models.Retirement) error {
	tag, err := t.q.Exec(ctx, `UPDATE retirements SET certificate_url = $2 WHERE id = $1`,
		uint64(r.ID), r.CertificateURL)
	if err != nil {
		return translateErr(err, "update retirement")
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (t *pgTx) Verifier(ctx context.Context, p domain.Principal) (*models.Verifier, error) {
	return getVerifier(ctx, t.q, p)
}

func (t *pgTx) PutVerifier(ctx context.Context, v *models.Verifier) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO verifiers (principal, organization, credentials, authorized_by, authorized_at, status, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (principal) DO UPDATE SET
			organization = EXCLUDED.organization,
			credentials = EXCLUDED.credentials,
			authorized_by = EXCLUDED.authorized_by,
			authorized_at = EXCLUDED.authorized_at,
			status = EXCLUDED.status,
			revoked_at = EXCLUDED.revoked_at`,
		string(v.Principal), v.Organization, v.Credentials, string(v.AuthorizedBy), v.AuthorizedAt,
		string(v.Status), v.RevokedAt)
	if err != nil {
		return translateErr(err, "put verifier")
	}
	return nil
}

func insertErr(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return sentinel.ErrAlreadyExists
	}
	return translateErr(err, op)
}

// -----------------------------------------------------------------------------
// Row mapping shared by the pool and transactions
// -----------------------------------------------------------------------------

const initiativeSelect = `
	SELECT id, name, description, location, documentation_url, manager, category, start_date, end_date,
	       total_credits, available_credits, retired_credits, verified, status, created_at, updated_at
	FROM initiatives`

func scanInitiative(row pgx.Row) (*models.Initiative, error) {
	var (
		i                             models.Initiative
		id, total, available, retired uint64
		manager, category, status     string
	)
	err := row.Scan(&id, &i.Name, &i.Description, &i.Location, &i.DocumentationURL, &manager, &category,
		&i.StartDate, &i.EndDate, &total, &available, &retired, &i.Verified, &status, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.ID = domain.InitiativeID(id)
	i.Manager = domain.Principal(manager)
	i.Category = domain.Category(category)
	i.Status = models.InitiativeStatus(status)
	i.TotalCredits, i.AvailableCredits, i.RetiredCredits = total, available, retired
	return &i, nil
}

func getInitiative(ctx context.Context, q querier, id domain.InitiativeID) (*models.Initiative, error) {
	i, err := scanInitiative(q.QueryRow(ctx, initiativeSelect+` WHERE id = $1`, uint64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, translateErr(err, "find initiative")
	}
	return i, nil
}

const batchSelect = `
	SELECT id, initiative_id, vintage_year, quantity, remaining, unit_price, status, created_at
	FROM batches`

func scanBatch(row pgx.Row) (*models.Batch, error) {
	var (
		b                models.Batch
		id, initiativeID uint64
		vintage          int32
		status           string
	)
	if err := row.Scan(&id, &initiativeID, &vintage, &b.Quantity, &b.Remaining, &b.UnitPrice, &status, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.ID = domain.BatchID(id)
	b.InitiativeID = domain.InitiativeID(initiativeID)
	b.VintageYear = domain.VintageYear(vintage)
	b.Status = models.BatchStatus(status)
	return &b, nil
}

func getBatch(ctx context.Context, q querier, id domain.BatchID) (*models.Batch, error) {
	b, err := scanBatch(q.QueryRow(ctx, batchSelect+` WHERE id = $1`, uint64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, translateErr(err, "find batch")
	}
	return b, nil
}

// getHolding returns nil, nil for an absent line.
func getHolding(ctx context.Context, q querier, key models.HoldingKey) (*models.Holding, error) {
	h := models.NewHolding(key)
	err := q.QueryRow(ctx, `
		SELECT balance, updated_at FROM holdings
		WHERE owner = $1 AND initiative_id = $2 AND vintage_year = $3`,
		string(key.Owner), uint64(key.InitiativeID), int32(key.VintageYear)).Scan(&h.Balance, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateErr(err, "find holding")
	}
	return h, nil
}

const retirementSelect = `
	SELECT id, owner, initiative_id, vintage_year, batch_id, quantity, reason, beneficiary, retired_at, certificate_url
	FROM retirements`

func scanRetirement(row pgx.Row) (*models.Retirement, error) {
	var (
		r                models.Retirement
		id, initiativeID uint64
		owner            string
		vintage          int32
		batchID          *uint64
		beneficiary      *string
	)
	if err := row.Scan(&id, &owner, &initiativeID, &vintage, &batchID, &r.Quantity, &r.Reason, &beneficiary,
		&r.RetiredAt, &r.CertificateURL); err != nil {
		return nil, err
	}
	r.ID = domain.RetirementID(id)
	r.Owner = domain.Principal(owner)
	r.InitiativeID = domain.InitiativeID(initiativeID)
	r.VintageYear = domain.VintageYear(vintage)
	if batchID != nil {
		b := domain.BatchID(*batchID)
		r.BatchID = &b
	}
	if beneficiary != nil {
		p := domain.Principal(*beneficiary)
		r.Beneficiary = &p
	}
	return &r, nil
}

func getRetirement(ctx context.Context, q querier, id domain.RetirementID) (*models.Retirement, error) {
	r, err := scanRetirement(q.QueryRow(ctx, retirementSelect+` WHERE id = $1`, uint64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, translateErr(err, "find retirement")
	}
	return r, nil
}

func getVerifier(ctx context.Context, q querier, p domain.Principal) (*models.Verifier, error) {
	var (
		v                     models.Verifier
		principal, by, status string
	)
	err := q.QueryRow(ctx, `
		SELECT principal, organization, credentials, authorized_by, authorized_at, status, revoked_at
		FROM verifiers WHERE principal = $1`, string(p)).
		Scan(&principal, &v.Organization, &v.Credentials, &by, &v.AuthorizedAt, &status, &v.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find verifier: %w", err)
	}
	v.Principal = domain.Principal(principal)
	v.AuthorizedBy = domain.Principal(by)
	v.Status = models.VerifierStatus(status)
	return &v, nil
}
