package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"orderdesk/internal/errx"
	"orderdesk/internal/logx"
)

// PostgresConn is the subset of *pgxpool.Pool the store needs.
type PostgresConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Postgres keeps values in the dashboard_storage table.
type Postgres struct {
	pool PostgresConn
}

func NewPostgres(pool PostgresConn) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `
SELECT value
FROM dashboard_storage
WHERE key = $1
LIMIT 1
`
	var value string
	if err := p.pool.QueryRow(ctx, q, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("postgres get failed")
		return "", false, errx.WrapPostgres(err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO dashboard_storage (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`
	if _, err := p.pool.Exec(ctx, q, key, value); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("postgres set failed")
		return errx.WrapPostgres(err)
	}
	return nil
}

// Remove is idempotent; deleting an absent key is not an error.
func (p *Postgres) Remove(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM dashboard_storage WHERE key = $1`, key); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("postgres delete failed")
		return errx.WrapPostgres(err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return errx.WrapPostgres(p.pool.Ping(ctx))
}
