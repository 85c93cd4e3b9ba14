package cart

import (
	"fortune_shop/internal/domain/cart/handler"
	"fortune_shop/internal/domain/cart/service"
	"fortune_shop/internal/domain/cart/store"
	productRepo "fortune_shop/internal/domain/product/repository"
	productService "fortune_shop/internal/domain/product/service"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CartModule 购物车模块
type CartModule struct{}

func init() {
	registry.Register(&CartModule{})
}

func (m *CartModule) Name() string {
	return "cart"
}

func (m *CartModule) Priority() int {
	return 15
}

func (m *CartModule) Init(ctx *registry.ModuleContext) error {
	products := productService.NewProductService(productRepo.NewProductRepository(ctx.DB), ctx.Cache)
	svc := service.NewCartService(store.NewCartStore(ctx.Cache), products)
	h := handler.NewCartHandler(svc)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CartHandler) {
	g := r.Group("/cart")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("", h.Get)
		g.POST("/items", h.AddItem)
		g.DELETE("/items/:id", h.RemoveItem)
		g.DELETE("", h.Clear)
	}
}
