package user

import (
	"fortune_shop/internal/domain/user/handler"
	"fortune_shop/internal/domain/user/repository"
	"fortune_shop/internal/domain/user/service"
	"fortune_shop/internal/pkg/config"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	setupOAuth(config.GlobalConfig)

	userRepo := repository.NewUserRepository(ctx.DB)
	userService := service.NewCachedUserService(
		service.NewUserService(userRepo, config.GlobalConfig.App.AdminEmails),
		ctx.Cache,
	)
	userHandler := handler.NewUserHandler(userService)

	setupRoutes(ctx.Router, userHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/:provider", h.BeginAuth)
		authGroup.GET("/:provider/callback", h.Callback)
	}

	userGroup := r.Group("/users")
	userGroup.Use(middleware.AuthMiddleware())
	{
		userGroup.GET("/me", h.Me)
	}

	admin := r.Group("/admin/users")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.ListUsers)
	}
}
