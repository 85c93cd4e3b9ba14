package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CtxTraceID    = "traceID"
	HeaderTraceID = "X-Request-ID"
)

// TraceMiddleware 添加请求追踪ID
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 优先沿用上游网关带来的 ID
		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		c.Set(CtxTraceID, traceID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}
