package middleware

import (
	"net/http"
	"sync"
	"time"
	"fortune_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter 存储每个IP的限流器
type IPRateLimiter struct {
	ips map[string]*ipEntry
	mu  sync.Mutex
	r   rate.Limit
	b   int
	ttl time.Duration
	now func() time.Time
}

// NewIPRateLimiter 创建一个新的IP限流器
// r: 每秒允许的请求数 (QPS)
// b: 桶的大小 (Burst)
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*ipEntry),
		r:   r,
		b:   b,
		ttl: 10 * time.Minute,
		now: time.Now,
	}
}

// GetLimiter 获取指定IP的限流器，顺带清理长时间未访问的IP
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	entry, exists := i.ips[ip]
	if !exists {
		if len(i.ips) > 10000 {
			i.evict(now)
		}
		entry = &ipEntry{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (i *IPRateLimiter) evict(now time.Time) {
	for ip, e := range i.ips {
		if now.Sub(e.lastSeen) > i.ttl {
			delete(i.ips, ip)
		}
	}
}

// RateLimitMiddleware 限流中间件
func RateLimitMiddleware(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.GetLimiter(c.ClientIP()).Allow() {
			response.Abort(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}
