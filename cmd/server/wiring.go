package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"offsetledger/internal/ledger/service"
	"offsetledger/internal/ledger/store"
	"offsetledger/internal/ledger/store/memory"
	pgstore "offsetledger/internal/ledger/store/postgres"
	"offsetledger/internal/platform/config"
	"offsetledger/internal/platform/kafka"
	"offsetledger/internal/platform/metrics"
	"offsetledger/internal/platform/middleware"
	"offsetledger/internal/platform/postgres"
	"offsetledger/internal/platform/redis"
	"offsetledger/internal/settlement"
	httptransport "offsetledger/internal/transport/http"
	"offsetledger/migrations"
	"offsetledger/pkg/platform/audit"
	auditmemory "offsetledger/pkg/platform/audit/store/memory"
	auditpg "offsetledger/pkg/platform/audit/store/postgres"
	"offsetledger/pkg/platform/audit/worker"
)

// dependencies holds the infrastructure chosen by configuration.
type dependencies struct {
	storeKind   string
	ledgerStore store.Store
	auditStore  audit.Store
	settler     service.Settler
	idempotency *middleware.Idempotency
	relay       *worker.OutboxRelay
	health      map[string]httptransport.HealthCheck
	closers     []func()
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// openDependencies selects in-memory or Postgres storage, the settlement
// collaborator, the Redis idempotency cache and the Kafka audit relay.
// On error everything opened so far is closed.
func openDependencies(ctx context.Context, cfg config.Config, log *slog.Logger, m *metrics.Metrics) (_ *dependencies, err error) {
	d := &dependencies{health: make(map[string]httptransport.HealthCheck)}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	var outbox *auditpg.Store
	if cfg.Database.URL == "" {
		d.storeKind = "memory"
		d.ledgerStore = memory.New(memory.WithTxTimeout(cfg.Ledger.TxTimeout))
		d.auditStore = auditmemory.NewInMemoryStore()
	} else {
		d.storeKind = "postgres"
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect ledger database: %w", err)
		}
		d.closers = append(d.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool, migrations.FS, log); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		d.ledgerStore = pgstore.New(pool)
		d.health["postgres"] = pool.Ping

		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("open audit outbox database: %w", err)
		}
		d.closers = append(d.closers, func() { _ = db.Close() })
		outbox = auditpg.New(db)
		d.auditStore = outbox
	}

	if cfg.Settlement.URL == "" {
		log.Info("settling purchases against the in-memory wallet", "funded_accounts", len(cfg.Settlement.DevBalances))
		d.settler = settlement.NewInMemoryWallet(cfg.Settlement.DevBalances)
	} else {
		d.settler = settlement.NewHTTPClient(cfg.Settlement.URL, cfg.Settlement.Timeout)
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if rc != nil {
		d.closers = append(d.closers, func() { _ = rc.Close() })
		d.idempotency = middleware.NewIdempotency(rc, cfg.Redis.IdempotencyTTL, log, m)
		d.health["redis"] = rc.Health
	}

	if len(cfg.Kafka.Brokers) > 0 {
		if outbox == nil {
			log.Warn("KAFKA_BROKERS set without DATABASE_URL; audit events stay in memory")
			return d, nil
		}
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, producer.Close)
		if err := producer.EnsureTopic(ctx, cfg.Kafka.AuditTopic, 1, 1); err != nil {
			return nil, err
		}
		d.relay = worker.NewOutboxRelay(outbox, producer, cfg.Kafka.AuditTopic,
			worker.WithInterval(cfg.Kafka.RelayInterval),
			worker.WithBatchSize(cfg.Kafka.RelayBatch),
			worker.WithLogger(log),
		)
		d.health["kafka"] = producer.Health
	}
	return d, nil
}
