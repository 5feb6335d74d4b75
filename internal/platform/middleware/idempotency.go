package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"offsetledger/internal/platform/metrics"
	dErrors "offsetledger/pkg/domain-errors"
	"offsetledger/pkg/platform/httputil"
	"offsetledger/pkg/requestcontext"
)

const (
	// IdempotencyHeader names the client supplied key.
	IdempotencyHeader = "Idempotency-Key"
	// ReplayedHeader is set on responses served from the cache.
	ReplayedHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255
	maxIdempotentBody       = 1 << 20
	inFlightTTL             = 30 * time.Second
	idempotencyKeyPrefix    = "idempotency:"
)

// cachedResponse is stored under the key. Status zero marks a request still
// being processed.
type cachedResponse struct {
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency replays the first response for a repeated Idempotency-Key on
// mutating routes. Keys are scoped to the authenticated principal, so it must
// run after RequireAuth. A nil *Idempotency passes everything through.
type Idempotency struct {
	client  goredis.Cmdable
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewIdempotency(client goredis.Cmdable, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Idempotency {
	if logger == nil {
		logger = slog.Default()
	}
	return &Idempotency{client: client, ttl: ttl, logger: logger, metrics: m}
}

func (i *Idempotency) Middleware(next http.Handler) http.Handler {
	if i == nil || i.client == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyHeader)
		if key == "" || !mutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Idempotency-Key is too long"))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBody))
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body too large or unreadable"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		ctx := r.Context()
		storeKey := idempotencyKeyPrefix + requestcontext.Principal(ctx).String() + ":" + key
		fingerprint := fingerprintOf(r.Method, r.URL.Path, body)

		acquired, err := i.reserve(ctx, storeKey, fingerprint)
		if err != nil {
			i.degraded(ctx, "reserve", err)
			next.ServeHTTP(w, r)
			return
		}
		if !acquired {
			i.replay(w, r, next, storeKey, fingerprint)
			return
		}

		rec := newRecorder(w, true)
		next.ServeHTTP(rec, r)

		// Server errors are not cached so the client can retry.
		if rec.status >= http.StatusInternalServerError {
			if err := i.client.Del(context.WithoutCancel(ctx), storeKey).Err(); err != nil {
				i.degraded(ctx, "release", err)
			}
			return
		}
		resp := cachedResponse{
			Fingerprint: fingerprint,
			Status:      rec.status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}
		if err := i.save(context.WithoutCancel(ctx), storeKey, resp); err != nil {
			i.degraded(ctx, "save", err)
		}
	})
}

func (i *Idempotency) reserve(ctx context.Context, key, fingerprint string) (bool, error) {
	raw, err := json.Marshal(cachedResponse{Fingerprint: fingerprint})
	if err != nil {
		return false, err
	}
	return i.client.SetNX(ctx, key, raw, inFlightTTL).Result()
}

func (i *Idempotency) save(ctx context.Context, key string, resp cachedResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return i.client.Set(ctx, key, raw, i.ttl).Err()
}

func (i *Idempotency) replay(w http.ResponseWriter, r *http.Request, next http.Handler, key, fingerprint string) {
	ctx := r.Context()
	raw, err := i.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		// Expired between reserve and read.
		next.ServeHTTP(w, r)
		return
	}
	if err != nil {
		i.degraded(ctx, "load", err)
		next.ServeHTTP(w, r)
		return
	}
	var cached cachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		i.degraded(ctx, "decode", err)
		next.ServeHTTP(w, r)
		return
	}

	switch {
	case cached.Fingerprint != fingerprint:
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "Idempotency-Key was already used for a different request"))
	case cached.Status == 0:
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "a request with this Idempotency-Key is still in progress"))
	default:
		i.metrics.IncrementIdempotentReplays()
		if cached.ContentType != "" {
			w.Header().Set("Content-Type", cached.ContentType)
		}
		w.Header().Set(ReplayedHeader, "true")
		w.WriteHeader(cached.Status)
		_, _ = w.Write(cached.Body)
	}
}

func (i *Idempotency) degraded(ctx context.Context, op string, err error) {
	i.metrics.IncrementIdempotencyErrors()
	i.logger.WarnContext(ctx, "idempotency cache unavailable, serving uncached",
		"op", op,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func fingerprintOf(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
