package qna

import (
	"fortune_shop/internal/domain/qna/handler"
	"fortune_shop/internal/domain/qna/repository"
	"fortune_shop/internal/domain/qna/service"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// QnAModule 问答模块
type QnAModule struct{}

func init() {
	registry.Register(&QnAModule{})
}

func (m *QnAModule) Name() string {
	return "qna"
}

func (m *QnAModule) Priority() int {
	return 35
}

func (m *QnAModule) Init(ctx *registry.ModuleContext) error {
	qService := service.NewQnAService(repository.NewQnARepository(ctx.DB))
	setupRoutes(ctx.Router, handler.NewQnAHandler(qService))
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.QnAHandler) {
	// 游客可访问，登录用户携带 token 时识别身份
	g := r.Group("/qna")
	g.Use(middleware.OptionalAuthMiddleware())
	{
		g.GET("", h.List)
		g.POST("", h.Create)
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
	}

	admin := r.Group("/admin/qna")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.PUT("/:id/answer", h.Answer)
	}
}
