// Package worker relays audit events from the Postgres outbox to Kafka.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"offsetledger/pkg/platform/audit/store/postgres"
)

// Outbox is the source of undelivered events.
type Outbox interface {
	Pending(ctx context.Context, limit int) ([]postgres.Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Producer publishes one record and waits for the broker acknowledgement.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// OutboxRelay polls the outbox and publishes entries in creation order.
// Delivery is at-least-once: a crash between publish and mark republishes.
type OutboxRelay struct {
	outbox   Outbox
	producer Producer
	topic    string
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

type Option func(*OutboxRelay)

func WithInterval(d time.Duration) Option {
	return func(r *OutboxRelay) { r.interval = d }
}

func WithBatchSize(n int) Option {
	return func(r *OutboxRelay) { r.batch = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *OutboxRelay) { r.logger = logger }
}

func NewOutboxRelay(outbox Outbox, producer Producer, topic string, opts ...Option) *OutboxRelay {
	r := &OutboxRelay{
		outbox:   outbox,
		producer: producer,
		topic:    topic,
		interval: time.Second,
		batch:    100,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.WarnContext(ctx, "outbox relay failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch. It stops at the first failed publish so
// order is preserved, marking everything delivered before it.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.Pending(ctx, r.batch)
	if err != nil {
		return 0, err
	}
	published := make([]uuid.UUID, 0, len(entries))
	var publishErr error
	for _, e := range entries {
		if err := r.producer.Produce(ctx, r.topic, []byte(e.AggregateID), e.Payload); err != nil {
			publishErr = err
			break
		}
		published = append(published, e.ID)
	}
	if err := r.outbox.MarkPublished(ctx, published); err != nil {
		return 0, err
	}
	if len(published) > 0 {
		r.logger.DebugContext(ctx, "outbox relayed", "count", len(published), "topic", r.topic)
	}
	return len(published), publishErr
}
