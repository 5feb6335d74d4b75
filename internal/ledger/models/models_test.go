package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestInitiative(t *testing.T) *Initiative {
	t.Helper()
	i, err := NewInitiative(1, "manager", "Mangrove Restoration", "", "Sundarbans", "",
		domain.CategoryReforestation, time.Unix(100, 0), time.Unix(200, 0), now)
	require.NoError(t, err)
	return i
}

func TestNewInitiative_Invariants(t *testing.T) {
	start, end := time.Unix(100, 0), time.Unix(200, 0)

	t.Run("starts pending with zero counters", func(t *testing.T) {
		i := newTestInitiative(t)
		assert.Equal(t, InitiativeStatusPending, i.Status)
		assert.False(t, i.Verified)
		assert.Zero(t, i.TotalCredits)
		assert.Zero(t, i.AvailableCredits)
		assert.Zero(t, i.RetiredCredits)
	})

	cases := []struct {
		name     string
		title    string
		location string
		start    time.Time
		end      time.Time
	}{
		{"empty name", "  ", "Kenya", start, end},
		{"empty location", "Cookstoves", "", start, end},
		{"start equals end", "Cookstoves", "Kenya", start, start},
		{"start after end", "Cookstoves", "Kenya", end, start},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewInitiative(1, "manager", tc.title, "", tc.location, "", domain.CategoryEnergyEfficiency, tc.start, tc.end, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestInitiative_VerificationGate(t *testing.T) {
	i := newTestInitiative(t)
	require.NoError(t, i.CanVerify(false))
	i.ApplyVerification(1000, now)

	assert.Equal(t, InitiativeStatusActive, i.Status)
	assert.True(t, i.Verified)
	assert.Equal(t, uint64(1000), i.TotalCredits)
	assert.Equal(t, uint64(1000), i.AvailableCredits)

	err := i.CanVerify(false)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	assert.NoError(t, i.CanVerify(true))

	i.ApplyStatus(InitiativeStatusSuspended, now)
	assert.Error(t, i.CanVerify(true))
}

func TestInitiative_CanMintRejectsOverflow(t *testing.T) {
	i := newTestInitiative(t)
	i.ApplyVerification(math.MaxUint64-10, now)

	require.NoError(t, i.CanMint(10))
	err := i.CanMint(11)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, uint64(math.MaxUint64-10), i.TotalCredits)
}

func TestInitiative_StatusTransitions(t *testing.T) {
	tests := []struct {
		from, to InitiativeStatus
		allowed  bool
	}{
		{InitiativeStatusPending, InitiativeStatusActive, false},
		{InitiativeStatusActive, InitiativeStatusSuspended, true},
		{InitiativeStatusActive, InitiativeStatusCompleted, true},
		{InitiativeStatusSuspended, InitiativeStatusActive, true},
		{InitiativeStatusSuspended, InitiativeStatusCompleted, false},
		{InitiativeStatusCompleted, InitiativeStatusActive, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestInitiative_CanIssueBatch(t *testing.T) {
	i := newTestInitiative(t)
	assert.True(t, dErrors.HasCode(i.CanIssueBatch(10), dErrors.CodeInvalidState))

	i.ApplyVerification(100, now)
	assert.True(t, dErrors.HasCode(i.CanIssueBatch(0), dErrors.CodeValidation))
	assert.True(t, dErrors.HasCode(i.CanIssueBatch(101), dErrors.CodeInsufficientSupply))
	require.NoError(t, i.CanIssueBatch(100))

	i.ApplyBatchIssued(100, now)
	assert.Zero(t, i.AvailableCredits)
	assert.Equal(t, uint64(100), i.TotalCredits)
}

func TestBatch_PurchaseMonotonicity(t *testing.T) {
	b, err := NewBatch(1, 1, 2024, 400, 5, 2020, now)
	require.NoError(t, err)

	amount, err := b.CanPurchase(150)
	require.NoError(t, err)
	assert.Equal(t, uint64(750), amount)
	b.ApplyPurchase(150)
	assert.Equal(t, uint64(250), b.Remaining)
	assert.Equal(t, BatchStatusAvailable, b.Status)

	_, err = b.CanPurchase(251)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientSupply))

	_, err = b.CanPurchase(250)
	require.NoError(t, err)
	b.ApplyPurchase(250)
	assert.Zero(t, b.Remaining)
	assert.Equal(t, BatchStatusSold, b.Status)
	assert.Equal(t, uint64(400), b.Sold())

	_, err = b.CanPurchase(1)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestNewBatch_Invariants(t *testing.T) {
	_, err := NewBatch(1, 1, 2019, 10, 5, 2020, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	_, err = NewBatch(1, 1, 2024, 0, 5, 2020, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	_, err = NewBatch(1, 1, 2024, 10, 0, 2020, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestBatch_PurchaseAmountOverflow(t *testing.T) {
	b, err := NewBatch(1, 1, 2024, 1<<40, 1<<40, 2020, now)
	require.NoError(t, err)
	_, err = b.CanPurchase(1 << 40)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestHolding_NeverNegative(t *testing.T) {
	h := NewHolding(HoldingKey{Owner: "alice", InitiativeID: 1, VintageYear: 2024})
	assert.True(t, dErrors.HasCode(h.CanDebit(1), dErrors.CodeInsufficientBalance))

	require.NoError(t, h.CanCredit(10))
	h.ApplyCredit(10, now)
	require.NoError(t, h.CanDebit(10))
	h.ApplyDebit(10, now)
	assert.Zero(t, h.Balance)
	assert.Error(t, h.CanDebit(1))
}

func TestRetirement_CertificateSetOnce(t *testing.T) {
	key := HoldingKey{Owner: "alice", InitiativeID: 1, VintageYear: 2024}
	r, err := NewRetirement(1, "alice", key, nil, 100, "offset Q1", nil, now)
	require.NoError(t, err)
	assert.Nil(t, r.BatchID)
	assert.False(t, r.HasCertificate())

	require.NoError(t, r.CanAttachCertificate("https://certs.example/1"))
	r.ApplyCertificate("https://certs.example/1")

	err = r.CanAttachCertificate("https://certs.example/other")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadySet))
	assert.Equal(t, "https://certs.example/1", *r.CertificateURL)
}

func TestNewRetirement_Invariants(t *testing.T) {
	key := HoldingKey{Owner: "alice", InitiativeID: 1, VintageYear: 2024}
	self := domain.Principal("alice")

	_, err := NewRetirement(1, "alice", key, nil, 10, "gift", &self, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	_, err = NewRetirement(1, "alice", key, nil, 10, " ", nil, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	_, err = NewRetirement(1, "alice", key, nil, 0, "gift", nil, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestVerifier_Revocation(t *testing.T) {
	v, err := NewVerifier("verra", "Verra", "ISO 14065", "admin", now)
	require.NoError(t, err)
	assert.True(t, v.IsActive())
	require.NoError(t, v.CanRevoke())
	v.ApplyRevocation(now)
	assert.False(t, v.IsActive())
	assert.NotNil(t, v.RevokedAt)
	assert.True(t, dErrors.HasCode(v.CanRevoke(), dErrors.CodeInvalidState))
}

func TestReconciliation(t *testing.T) {
	i := newTestInitiative(t)
	i.ApplyVerification(1000, now)
	i.ApplyBatchIssued(400, now)
	i.ApplyRetirement(100, now)

	r := NewReconciliation(i, 400, 0, 300)
	assert.True(t, r.Balanced)

	r = NewReconciliation(i, 400, 0, 301)
	assert.False(t, r.Balanced)
}
