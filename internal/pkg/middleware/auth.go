package middleware

import (
	"net/http"
	"strings"
	"fortune_shop/internal/domain/user/model"
	"fortune_shop/pkg/response"
	"fortune_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	CtxUserID = "userID"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Authorization header is required")
			return
		}

		claims, ok := parseBearer(authHeader)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware 有 token 则解析，没有按游客处理
// token 存在但无效时仍然拒绝，避免静默降级成游客
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		claims, ok := parseBearer(authHeader)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// AdminMiddleware 管理员权限中间件，需在 AuthMiddleware 之后
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CtxRole); !exists {
			response.Abort(c, http.StatusUnauthorized, response.ErrNoPermission, "Unauthorized")
			return
		}
		if !IsAdmin(c) {
			response.Abort(c, http.StatusForbidden, response.ErrNoPermission, "Admin permission required")
			return
		}
		c.Next()
	}
}

// CurrentUserID 当前登录用户 ID，游客返回 false
func CurrentUserID(c *gin.Context) (string, bool) {
	uid := c.GetString(CtxUserID)
	return uid, uid != ""
}

// CurrentEmail 当前登录用户邮箱
func CurrentEmail(c *gin.Context) string {
	return c.GetString(CtxEmail)
}

func IsAdmin(c *gin.Context) bool {
	return c.GetInt(CtxRole) == model.RoleAdmin
}

func parseBearer(header string) (*utils.Claims, bool) {
	// 格式 "Bearer <token>"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}
	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxRole, claims.Role)
}
