package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"offsetledger/internal/platform/metrics"
	"offsetledger/pkg/domain"
	"offsetledger/pkg/requestcontext"
)

type IdempotencySuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *goredis.Client
	metrics *metrics.Metrics
	calls   atomic.Int32
	status  int
	handler http.Handler
}

func TestIdempotencySuite(t *testing.T) {
	suite.Run(t, new(IdempotencySuite))
}

func (s *IdempotencySuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.calls.Store(0)
	s.status = http.StatusCreated

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := s.calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = fmt.Fprintf(w, `{"call":%d,"echo":%q}`, n, body)
	})
	idem := NewIdempotency(s.client, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)), s.metrics)
	s.handler = withPrincipal("acme-corp", idem.Middleware(inner))
}

func (s *IdempotencySuite) TearDownTest() {
	_ = s.client.Close()
	s.mr.Close()
}

func withPrincipal(p domain.Principal, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(r.Context(), p)))
	})
}

func (s *IdempotencySuite) do(method, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *IdempotencySuite) TestReplaysFirstResponse() {
	first := s.do(http.MethodPost, "/batches/1/purchase", "k1", `{"quantity":5}`)
	second := s.do(http.MethodPost, "/batches/1/purchase", "k1", `{"quantity":5}`)

	s.Equal(int32(1), s.calls.Load())
	s.Equal(http.StatusCreated, second.Code)
	s.Equal(first.Body.String(), second.Body.String())
	s.Equal("true", second.Header().Get(ReplayedHeader))
	s.Equal("application/json", second.Header().Get("Content-Type"))
	s.Empty(first.Header().Get(ReplayedHeader))
	s.InDelta(1, testutil.ToFloat64(s.metrics.IdempotentReplays), 0)
}

func (s *IdempotencySuite) TestWithoutKeyEveryRequestRuns() {
	s.do(http.MethodPost, "/transfers", "", `{}`)
	s.do(http.MethodPost, "/transfers", "", `{}`)
	s.Equal(int32(2), s.calls.Load())
}

func (s *IdempotencySuite) TestReadsAreNeverCached() {
	s.do(http.MethodGet, "/batches/1", "k1", "")
	s.do(http.MethodGet, "/batches/1", "k1", "")
	s.Equal(int32(2), s.calls.Load())
}

func (s *IdempotencySuite) TestKeyReusedForDifferentRequest() {
	s.do(http.MethodPost, "/batches/1/purchase", "k1", `{"quantity":5}`)
	rec := s.do(http.MethodPost, "/batches/1/purchase", "k1", `{"quantity":6}`)

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal(int32(1), s.calls.Load())
}

func (s *IdempotencySuite) TestInFlightKeyConflicts() {
	s.Require().NoError(s.mr.Set(idempotencyKeyPrefix+"acme-corp:k1",
		`{"fingerprint":"`+fingerprintOf(http.MethodPost, "/transfers", []byte(`{}`))+`","status":0}`))

	rec := s.do(http.MethodPost, "/transfers", "k1", `{}`)
	s.Equal(http.StatusConflict, rec.Code)
	s.Zero(s.calls.Load())
}

func (s *IdempotencySuite) TestServerErrorsAreNotCached() {
	s.status = http.StatusInternalServerError
	s.do(http.MethodPost, "/transfers", "k1", `{}`)
	s.False(s.mr.Exists(idempotencyKeyPrefix + "acme-corp:k1"))

	s.status = http.StatusNoContent
	s.do(http.MethodPost, "/transfers", "k1", `{}`)
	s.Equal(int32(2), s.calls.Load())
}

func (s *IdempotencySuite) TestClientErrorsAreCached() {
	s.status = http.StatusConflict
	s.do(http.MethodPost, "/transfers", "k1", `{}`)
	rec := s.do(http.MethodPost, "/transfers", "k1", `{}`)
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(int32(1), s.calls.Load())
}

func (s *IdempotencySuite) TestKeysAreScopedToPrincipal() {
	s.do(http.MethodPost, "/transfers", "shared", `{}`)

	idem := NewIdempotency(s.client, time.Hour, nil, s.metrics)
	other := withPrincipal("globex", idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})))
	req := httptest.NewRequest(http.MethodPost, "/transfers", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyHeader, "shared")
	rec := httptest.NewRecorder()
	other.ServeHTTP(rec, req)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(int32(2), s.calls.Load())
}

func (s *IdempotencySuite) TestEntriesExpireAfterTTL() {
	s.do(http.MethodPost, "/transfers", "k1", `{}`)
	s.mr.FastForward(2 * time.Hour)
	s.do(http.MethodPost, "/transfers", "k1", `{}`)
	s.Equal(int32(2), s.calls.Load())
}

func (s *IdempotencySuite) TestOverlongKeyRejected() {
	rec := s.do(http.MethodPost, "/transfers", strings.Repeat("x", maxIdempotencyKeyLength+1), `{}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Zero(s.calls.Load())
}

func (s *IdempotencySuite) TestRedisOutageFailsOpen() {
	s.mr.SetError("LOADING redis is loading the dataset in memory")
	rec := s.do(http.MethodPost, "/transfers", "k1", `{}`)
	s.Equal(http.StatusCreated, rec.Code)
	s.Equal(int32(1), s.calls.Load())
	s.InDelta(1, testutil.ToFloat64(s.metrics.IdempotencyErrors), 0)
}

func TestNilIdempotencyPassesThrough(t *testing.T) {
	var idem *Idempotency
	called := false
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/transfers", nil)
	req.Header.Set(IdempotencyHeader, "k1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, called)
	assert.Equal(t, 64, len(fingerprintOf("POST", "/", nil)))
}
