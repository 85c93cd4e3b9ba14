package product

import (
	"fortune_shop/internal/domain/product/handler"
	"fortune_shop/internal/domain/product/repository"
	"fortune_shop/internal/domain/product/service"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ProductModule 商品模块
type ProductModule struct{}

func init() {
	registry.Register(&ProductModule{})
}

func (m *ProductModule) Name() string {
	return "product"
}

func (m *ProductModule) Priority() int {
	return 5
}

func (m *ProductModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewProductRepository(ctx.DB)
	svc := service.NewProductService(repo, ctx.Cache)
	h := handler.NewProductHandler(svc)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ProductHandler) {
	g := r.Group("/products")
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
	}

	admin := r.Group("/admin/products")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.AdminList)
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
	}
}
