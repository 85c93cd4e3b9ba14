package common

import (
	_ "fortune_shop/docs"
	commonHandler "fortune_shop/internal/pkg/common"
	"fortune_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	health := commonHandler.NewHealthHandler(ctx.DB, ctx.Redis)
	metricsHandler := gin.WrapH(promhttp.HandlerFor(ctx.Metrics.Registry(), promhttp.HandlerOpts{}))
	setupRoutes(ctx.Router, health, metricsHandler)
	return nil
}

func setupRoutes(r *gin.Engine, health *commonHandler.HealthHandler, metricsHandler gin.HandlerFunc) {
	r.GET("/health", health.Health)
	r.GET("/metrics", metricsHandler)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
