// Package db opens the Postgres pool behind the postgres storage driver.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"orderdesk/internal/logx"
)

const (
	maxConns    = 8
	idleTimeout = 5 * time.Minute
	maxLifetime = 30 * time.Minute
	pingTimeout = 5 * time.Second
)

// Connect returns a pool that has answered a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse storage dsn: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MaxConnIdleTime = idleTimeout
	cfg.MaxConnLifetime = maxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s@%s: %w", cfg.ConnConfig.Database, cfg.ConnConfig.Host, err)
	}

	logx.Debug().Str("host", cfg.ConnConfig.Host).Str("database", cfg.ConnConfig.Database).Int32("maxConns", cfg.MaxConns).Msg("storage pool ready")
	return pool, nil
}
