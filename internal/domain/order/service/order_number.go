package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NumberGenerator 生成 YYYYMMDD-NNNN 格式的订单号
type NumberGenerator interface {
	Next(ctx context.Context, n int) ([]string, error)
}

type redisNumberGenerator struct {
	rdb *redis.Client
	loc *time.Location
	now func() time.Time
}

// NewRedisNumberGenerator 按 loc 所在时区的日期计数
func NewRedisNumberGenerator(rdb *redis.Client, loc *time.Location) NumberGenerator {
	return &redisNumberGenerator{rdb: rdb, loc: loc, now: time.Now}
}

// Next 一次取 n 个连续号码，计数器保留 48 小时
func (g *redisNumberGenerator) Next(ctx context.Context, n int) ([]string, error) {
	day := g.now().In(g.loc).Format("20060102")
	key := "order:seq:" + day

	pipe := g.rdb.TxPipeline()
	incr := pipe.IncrBy(ctx, key, int64(n))
	pipe.Expire(ctx, key, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("allocate order number: %w", err)
	}

	last := incr.Val()
	return FormatNumbers(day, last-int64(n)+1, n), nil
}

// FormatNumbers 从 first 开始生成 n 个号码
func FormatNumbers(day string, first int64, n int) []string {
	numbers := make([]string, n)
	for i := 0; i < n; i++ {
		numbers[i] = fmt.Sprintf("%s-%04d", day, first+int64(i))
	}
	return numbers
}

// SeoulLocation 加载失败时使用固定 +09:00
func SeoulLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}
