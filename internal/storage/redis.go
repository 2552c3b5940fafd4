package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"orderdesk/internal/config"
	"orderdesk/internal/errx"
	"orderdesk/internal/logx"
)

// NewRedisClient dials Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.ReadTimeout = time.Duration(cfg.ReadTimeout) * time.Second
	opts.WriteTimeout = time.Duration(cfg.WriteTimeout) * time.Second
	opts.DialTimeout = time.Duration(cfg.DialTimeout) * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Redis stores values as plain strings. A zero ttl keeps keys forever.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("redis get failed")
		return "", false, errx.WrapRedis(err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("redis set failed")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("redis del failed")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return errx.WrapRedis(r.client.Ping(ctx).Err())
}
