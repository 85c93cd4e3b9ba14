package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware 跨域配置，未配置来源时只放行本地前端
func CORSMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", HeaderTraceID, "Idempotency-Key", "X-Guest-Password"},
		ExposeHeaders:    []string{HeaderTraceID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
