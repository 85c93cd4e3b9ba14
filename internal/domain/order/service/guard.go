package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubmitGuard 防止重复提交
type SubmitGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type redisSubmitGuard struct {
	rdb *redis.Client
}

func NewRedisSubmitGuard(rdb *redis.Client) SubmitGuard {
	return &redisSubmitGuard{rdb: rdb}
}

func (g *redisSubmitGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return g.rdb.SetNX(ctx, key, 1, ttl).Result()
}

func (g *redisSubmitGuard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, key).Err()
}
