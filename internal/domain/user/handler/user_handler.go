package handler

import (
	"errors"
	"net/http"
	"fortune_shop/internal/domain/user/service"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/pkg/logger"
	"fortune_shop/pkg/response"
	"fortune_shop/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"go.uber.org/zap"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// withProvider gothic 从 query 中读取 provider
func withProvider(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()
}

// BeginAuth 跳转到第三方登录页
// @Summary 第三方登录
// @Tags auth
// @Param provider path string true "kakao | google"
// @Router /auth/{provider} [get]
func (h *UserHandler) BeginAuth(c *gin.Context) {
	if _, err := goth.GetProvider(c.Param("provider")); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "unsupported provider")
		return
	}
	withProvider(c)
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// Callback 第三方登录回调，返回 JWT
// @Summary 第三方登录回调
// @Tags auth
// @Produce json
// @Param provider path string true "kakao | google"
// @Success 200 {object} response.Response{data=service.LoginResult}
// @Router /auth/{provider}/callback [get]
func (h *UserHandler) Callback(c *gin.Context) {
	withProvider(c)
	gu, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		logger.Log.Warn("oauth callback failed", zap.String("provider", c.Param("provider")), zap.Error(err))
		response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "oauth authentication failed")
		return
	}

	res, err := h.service.LoginWithOAuth(c.Request.Context(), service.OAuthProfile{
		Provider:       gu.Provider,
		ProviderUserID: gu.UserID,
		Email:          gu.Email,
		Name:           displayName(gu),
	})
	if err != nil {
		if errors.Is(err, service.ErrProfileInvalid) {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "provider did not return an email")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, res)
}

func displayName(u goth.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.NickName
}

// Me 当前用户
// @Summary 当前用户
// @Tags user
// @Security Bearer
// @Success 200 {object} response.Response{data=model.User}
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	user, err := h.service.GetUser(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrUserNotFound, "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, user)
}

// ListUsers 管理员查看用户列表
func (h *UserHandler) ListUsers(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	users, total, err := h.service.GetUsers(c.Request.Context(), &p)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, utils.NewPageResult(users, total, p))
}
