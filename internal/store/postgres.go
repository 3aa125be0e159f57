// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package store provides PostgreSQL connection pooling and schema
// management for Parley.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// DefaultMaxConns bounds the connection pool when no value is configured.
// Every request checks a connection out for the duration of one operation
// and releases it on every exit path; the pool is the only connection owner.
const DefaultMaxConns = 10

// connectAttempts is how many times to ping a fresh pool before giving up.
// Covers the common case of the database finishing startup after the server.
const connectAttempts = 5

// NewPool creates a bounded PostgreSQL connection pool and verifies
// connectivity with a ping, retrying with backoff while the database comes
// up. The caller owns the pool and must Close it on shutdown.
func NewPool(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").Wrap(err)
	}
	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectAttempts-1, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("attempts", connectAttempts).
			Wrap(err)
	}

	return pool, nil
}
