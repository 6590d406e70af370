// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store provides the PostgreSQL persistence of spaces, their event
// log and character permission policies.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// poolIface is the subset of pgxpool.Pool the repositories use. It is
// satisfied by pgxmock in tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Open connects a pool and checks the connection.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}
	return pool, nil
}

// RetryConfig controls how writes are retried on transient failures.
type RetryConfig struct {
	Attempts uint64        `koanf:"attempts"`
	Base     time.Duration `koanf:"base"`
}

// DefaultRetryConfig returns the stock retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, Base: 20 * time.Millisecond}
}

func (c RetryConfig) backoff() retry.Backoff {
	base := c.Base
	if base <= 0 {
		base = DefaultRetryConfig().Base
	}
	b := retry.NewExponential(base)
	b = retry.WithJitterPercent(10, b)
	return retry.WithMaxRetries(c.Attempts, b)
}

// withRetry runs fn, repeating it while it fails with a transient error.
func withRetry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, cfg.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// isTransient reports whether err is worth retrying: serialization and
// deadlock failures, and errors pgx marks safe to retry.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}
