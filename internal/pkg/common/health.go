package common

import (
	"context"
	"net/http"
	"time"
	"fortune_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthHandler 健康检查，分别探测数据库和 Redis
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb}
}

// Health 健康检查
// @Summary 健康检查
// @Tags common
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 503 {object} response.Response{data=map[string]string}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"database": "ok", "redis": "ok"}
	healthy := true

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		healthy = false
	}
	if h.redis == nil || h.redis.Ping(ctx).Err() != nil {
		checks["redis"] = "unavailable"
		healthy = false
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    response.ErrServerInternal,
			Message: "unhealthy",
			Data:    checks,
		})
		return
	}
	response.Success(c, checks)
}
