package settlement

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offsetledger/pkg/domain"
	"offsetledger/pkg/platform/circuit"
)

func TestInMemoryWallet_Settle(t *testing.T) {
	ctx := context.Background()
	w := NewInMemoryWallet(map[domain.Principal]uint64{"buyer": 1000})

	require.NoError(t, w.Settle(ctx, 750, "buyer", "seller"))
	assert.Equal(t, uint64(250), w.Balance("buyer"))
	assert.Equal(t, uint64(750), w.Balance("seller"))

	err := w.Settle(ctx, 251, "buyer", "seller")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, uint64(250), w.Balance("buyer"), "failed settle moves nothing")
}

func TestInMemoryWallet_SettleRejectsPayeeOverflow(t *testing.T) {
	ctx := context.Background()
	w := NewInMemoryWallet(map[domain.Principal]uint64{"buyer": 10, "seller": math.MaxUint64 - 5})

	err := w.Settle(ctx, 6, "buyer", "seller")
	assert.ErrorIs(t, err, ErrBalanceOverflow)
	assert.Equal(t, uint64(10), w.Balance("buyer"), "failed settle moves nothing")
	assert.Equal(t, uint64(math.MaxUint64-5), w.Balance("seller"))

	require.NoError(t, w.Settle(ctx, 5, "buyer", "seller"))
	assert.Equal(t, uint64(math.MaxUint64), w.Balance("seller"))

	require.NoError(t, w.Settle(ctx, 5, "buyer", "buyer"), "paying yourself never overflows")
	assert.Equal(t, uint64(5), w.Balance("buyer"))
}

func TestInMemoryWallet_ConcurrentSettlesNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	w := NewInMemoryWallet(map[domain.Principal]uint64{"buyer": 10})

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.Settle(ctx, 1, "buyer", "seller") == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, ok)
	assert.Zero(t, w.Balance("buyer"))
}

func TestHTTPClient_Settle(t *testing.T) {
	var got settleRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	require.NoError(t, c.Settle(context.Background(), 500, "buyer", "manager"))
	assert.Equal(t, settleRequest{Amount: 500, Payer: "buyer", Payee: "manager"}, got)
}

func TestHTTPClient_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL, time.Second).Settle(context.Background(), 1, "a", "b")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestHTTPClient_BreakerOpensOnServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	breaker := circuit.New("settlement", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	c := NewHTTPClient(srv.URL, time.Second, WithBreaker(breaker))

	for range 2 {
		assert.ErrorIs(t, c.Settle(context.Background(), 1, "a", "b"), ErrUnavailable)
	}
	assert.True(t, breaker.IsOpen())

	err := c.Settle(context.Background(), 1, "a", "b")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, calls, "open circuit short-circuits")
}
