package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"offsetledger/pkg/domain"
	"offsetledger/pkg/platform/circuit"
)

// HTTPClient settles through an external payment endpoint. It POSTs
// {"amount","payer","payee"} and treats any 2xx as settled. A 402 or 409
// means the payment was refused; other failures count against a circuit
// breaker so a dead endpoint fails fast.
type HTTPClient struct {
	url     string
	client  *http.Client
	breaker *circuit.Breaker
}

type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.client = c }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) HTTPOption {
	return func(h *HTTPClient) { h.breaker = b }
}

func NewHTTPClient(url string, timeout time.Duration, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		breaker: circuit.New("settlement", circuit.WithFailureThreshold(5), circuit.WithCooldown(10*time.Second)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type settleRequest struct {
	Amount uint64 `json:"amount"`
	Payer  string `json:"payer"`
	Payee  string `json:"payee"`
}

func (h *HTTPClient) Settle(ctx context.Context, amount uint64, payer, payee domain.Principal) error {
	if !h.breaker.Allow() {
		return fmt.Errorf("%w: circuit open", ErrUnavailable)
	}

	body, err := json.Marshal(settleRequest{Amount: amount, Payer: payer.String(), Payee: payee.String()})
	if err != nil {
		return fmt.Errorf("marshal settlement request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build settlement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := h.client.Do(req)
	if err != nil {
		h.breaker.RecordFailure()
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		h.breaker.RecordSuccess()
		return nil
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusConflict:
		h.breaker.RecordSuccess()
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	default:
		h.breaker.RecordFailure()
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}
