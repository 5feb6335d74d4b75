// Package postgres opens the shared pgx pool and applies the embedded schema.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"offsetledger/internal/platform/config"
)

var (
	pgxPoolNewWithConfig = pgxpool.NewWithConfig
	pingTimeout          = 2 * time.Second
	sleep                = time.Sleep
)

// NewPool connects to cfg.URL, retrying until the database answers a ping or
// the retry budget is spent.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}
	var lastErr error
	for range retries {
		pool, err := pgxPoolNewWithConfig(ctx, poolCfg)
		if err != nil {
			lastErr = err
			sleep(cfg.RetryDelay)
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = pool.Ping(pingCtx)
		cancel()
		if err == nil {
			return pool, nil
		}
		lastErr = err
		pool.Close()
		if ctx.Err() != nil {
			break
		}
		sleep(cfg.RetryDelay)
	}
	return nil, fmt.Errorf("db ping retries exhausted: %w", lastErr)
}
