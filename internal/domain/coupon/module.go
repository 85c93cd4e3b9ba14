package coupon

import (
	"fortune_shop/internal/domain/coupon/handler"
	"fortune_shop/internal/domain/coupon/repository"
	"fortune_shop/internal/domain/coupon/service"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/internal/pkg/registry"
	"fortune_shop/internal/pkg/worker"

	"github.com/gin-gonic/gin"
)

// CouponModule 优惠券模块
type CouponModule struct{}

func init() {
	registry.Register(&CouponModule{})
}

func (m *CouponModule) Name() string {
	return "coupon"
}

func (m *CouponModule) Priority() int {
	return 10
}

func (m *CouponModule) Init(ctx *registry.ModuleContext) error {
	// 5 个 worker，缓冲 1000
	pool := worker.NewWorkerPool(5, 1000)
	pool.Start()
	ctx.OnShutdown(pool.Stop)

	cRepo := repository.NewCouponRepository(ctx.DB)
	cService := service.NewCouponService(cRepo, service.NewRedisStockGate(ctx.Redis), ctx.Transactor, pool, ctx.Metrics)
	cHandler := handler.NewCouponHandler(cService)

	setupRoutes(ctx.Router, cHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CouponHandler) {
	g := r.Group("/coupons")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("/mine", h.ListMine)
		g.POST("/:id/claim", h.ClaimCoupon)
	}

	admin := r.Group("/admin/coupons")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.ListCoupons)
		admin.POST("", h.CreateCoupon)
		admin.POST("/send", h.SendCoupon)
	}
}
