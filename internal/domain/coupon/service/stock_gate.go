package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ClaimResult Lua 脚本返回值
type ClaimResult int

const (
	ClaimOK             ClaimResult = 1
	ClaimAlreadyClaimed ClaimResult = -1
	ClaimSoldOut        ClaimResult = -2
	ClaimNotWarmed      ClaimResult = -3
)

// StockGate Redis 预扣库存，数据库由 worker 异步落库
type StockGate interface {
	Init(ctx context.Context, couponID string, stock int) error
	Claim(ctx context.Context, couponID, userID string) (ClaimResult, error)
	Release(ctx context.Context, couponID, userID string) error
}

type redisStockGate struct {
	rdb *redis.Client
}

func NewRedisStockGate(rdb *redis.Client) StockGate {
	return &redisStockGate{rdb: rdb}
}

func stockKey(couponID string) string { return fmt.Sprintf("coupon:stock:%s", couponID) }
func usersKey(couponID string) string { return fmt.Sprintf("coupon:users:%s", couponID) }

func (g *redisStockGate) Init(ctx context.Context, couponID string, stock int) error {
	return g.rdb.Set(ctx, stockKey(couponID), stock, 0).Err()
}

// Lua 脚本：检查用户是否已领 + 检查库存 + 扣减库存 + 记录用户已领
var claimScript = redis.NewScript(`
	local user_key = KEYS[1]
	local stock_key = KEYS[2]
	local user_id = ARGV[1]

	if redis.call("SISMEMBER", user_key, user_id) == 1 then
		return -1
	end

	local stock = tonumber(redis.call("GET", stock_key))
	if stock == nil then
		return -3
	end
	if stock <= 0 then
		return -2
	end

	redis.call("DECR", stock_key)
	redis.call("SADD", user_key, user_id)
	return 1
`)

var releaseScript = redis.NewScript(`
	if redis.call("SREM", KEYS[1], ARGV[1]) == 1 then
		redis.call("INCR", KEYS[2])
	end
	return 1
`)

func (g *redisStockGate) Claim(ctx context.Context, couponID, userID string) (ClaimResult, error) {
	res, err := claimScript.Run(ctx, g.rdb, []string{usersKey(couponID), stockKey(couponID)}, userID).Int()
	if err != nil {
		return 0, fmt.Errorf("redis claim: %w", err)
	}
	return ClaimResult(res), nil
}

// Release 落库失败时归还预扣的库存
func (g *redisStockGate) Release(ctx context.Context, couponID, userID string) error {
	return releaseScript.Run(ctx, g.rdb, []string{usersKey(couponID), stockKey(couponID)}, userID).Err()
}
