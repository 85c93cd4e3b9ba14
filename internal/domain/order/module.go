package order

import (
	"context"
	cartService "fortune_shop/internal/domain/cart/service"
	cartStore "fortune_shop/internal/domain/cart/store"
	couponRepo "fortune_shop/internal/domain/coupon/repository"
	couponService "fortune_shop/internal/domain/coupon/service"
	"fortune_shop/internal/domain/order/handler"
	"fortune_shop/internal/domain/order/payment"
	"fortune_shop/internal/domain/order/repository"
	"fortune_shop/internal/domain/order/service"
	productRepo "fortune_shop/internal/domain/product/repository"
	productService "fortune_shop/internal/domain/product/service"
	"fortune_shop/internal/pkg/config"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/internal/pkg/registry"
	"fortune_shop/internal/pkg/worker"

	"github.com/gin-gonic/gin"
)

// OrderModule 订单模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	return 20
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	cfg := config.GlobalConfig

	// 邮件发送池
	pool := worker.NewWorkerPool(2, 200)
	pool.Start()
	ctx.OnShutdown(pool.Stop)

	products := productService.NewProductService(productRepo.NewProductRepository(ctx.DB), ctx.Cache)
	carts := cartService.NewCartService(cartStore.NewCartStore(ctx.Cache), products)
	ledger := couponService.NewLedger(couponRepo.NewCouponRepository(ctx.DB), ctx.Metrics)
	oRepo := repository.NewOrderRepository(ctx.DB)

	oService := service.NewOrderService(service.Deps{
		Repo:       oRepo,
		Products:   products,
		Carts:      carts,
		Ledger:     ledger,
		Numbers:    service.NewRedisNumberGenerator(ctx.Redis, service.SeoulLocation()),
		Guard:      service.NewRedisSubmitGuard(ctx.Redis),
		Transactor: ctx.Transactor,
		Storage:    ctx.Storage,
		Bucket:     cfg.Storage.ResultBucket,
		Retention:  cfg.Jobs.FileRetention,
		Payment:    payment.NewBankTransferStrategy(cfg.Bank),
		Notifier:   service.NewMailNotifier(ctx.Mailer, pool, cfg.Jobs.FileRetention),
		Metrics:    ctx.Metrics,
	})
	cleaner := service.NewFileCleaner(oRepo, ctx.Storage, cfg.Storage.ResultBucket, cfg.Jobs.FileRetention, ctx.Metrics)

	if cfg.Jobs.CleanupInterval > 0 {
		ctx.AddJob(worker.NewTickerJob("cleanup-expired-files", cfg.Jobs.CleanupInterval, func(c context.Context) error {
			_, err := cleaner.CleanupExpired(c)
			return err
		}))
	}

	setupRoutes(ctx.Router, handler.NewOrderHandler(oService), handler.NewJobHandler(cleaner, cfg.Jobs.CronSecret))
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler, jobs *handler.JobHandler) {
	g := r.Group("/orders")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("", h.Checkout)
		g.GET("", h.ListMine)
		g.GET("/:id", h.GetMine)
		g.POST("/:id/cancel", h.Cancel)
		g.POST("/:id/cancel-request", h.RequestCancel)
		g.GET("/:id/payment", h.PaymentInfo)
		g.GET("/:id/result", h.DownloadResult)
	}

	admin := r.Group("/admin/orders")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.AdminList)
		admin.GET("/:id", h.AdminGet)
		admin.POST("/:id/confirm", h.ConfirmPayment)
		admin.POST("/:id/start", h.StartProcessing)
		admin.POST("/:id/result", h.UploadResult)
		admin.POST("/:id/complete", h.CompleteWithoutFile)
		admin.POST("/:id/approve-cancel", h.ApproveCancel)
		admin.GET("/:id/result", h.DownloadResult)
	}

	r.POST("/jobs/cleanup-expired-files", jobs.CleanupExpiredFiles)
}
