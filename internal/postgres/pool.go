// Package postgres owns the pgx connection pool and query instrumentation.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	poolMaxConns        = 10
	poolConnectTimeout  = 5 * time.Second
	poolHealthCheckFreq = 30 * time.Second
)

// NewPool creates a pgx pool with tracing and query logging wired in, and
// verifies connectivity with a ping before returning.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.MaxConns == 0 {
		cfg.MaxConns = poolMaxConns
	}
	cfg.HealthCheckPeriod = poolHealthCheckFreq
	cfg.ConnConfig.ConnectTimeout = poolConnectTimeout

	// otelpgx creates DB spans; the logging tracer wraps it to add structured
	// log lines and per-query metrics.
	cfg.ConnConfig.Tracer = wrapQueryTracer(otelpgx.NewTracer(
		otelpgx.WithTrimSQLInSpanName(),
	))

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, poolConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
