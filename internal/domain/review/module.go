package review

import (
	orderRepo "fortune_shop/internal/domain/order/repository"
	"fortune_shop/internal/domain/review/handler"
	"fortune_shop/internal/domain/review/repository"
	"fortune_shop/internal/domain/review/service"
	"fortune_shop/internal/pkg/config"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ReviewModule 评价模块
type ReviewModule struct{}

func init() {
	registry.Register(&ReviewModule{})
}

func (m *ReviewModule) Name() string {
	return "review"
}

func (m *ReviewModule) Priority() int {
	return 30
}

func (m *ReviewModule) Init(ctx *registry.ModuleContext) error {
	rRepo := repository.NewReviewRepository(ctx.DB)
	rService := service.NewReviewService(rRepo, orderRepo.NewOrderRepository(ctx.DB), ctx.Storage, config.GlobalConfig.Storage.ReviewBucket)
	setupRoutes(ctx.Router, handler.NewReviewHandler(rService))
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ReviewHandler) {
	g := r.Group("/reviews")
	g.GET("", h.ListApproved)

	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("", h.Create)
		auth.GET("/mine", h.ListMine)
		auth.DELETE("/:id", h.Delete)
	}

	admin := r.Group("/admin/reviews")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.AdminList)
		admin.PUT("/:id/approval", h.SetApproval)
		admin.PUT("/:id/reply", h.Reply)
		admin.DELETE("/:id", h.Delete)
	}
}
