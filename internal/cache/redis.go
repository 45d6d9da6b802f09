package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Redis struct {
	redisdb *redis.Client
	ttl     time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return NewRedisFromClient(redisdb, cfg.TTL)
}

func NewRedisFromClient(c *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{redisdb: c, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.redisdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) error {
	return r.redisdb.Set(ctx, key, val, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.redisdb.Del(ctx, key).Err()
}

// Ping checks redis connectivity; used by the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	return r.redisdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.redisdb.Close()
}
