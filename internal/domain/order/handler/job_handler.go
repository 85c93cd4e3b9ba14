package handler

import (
	"crypto/subtle"
	"net/http"
	"fortune_shop/internal/domain/order/service"
	"fortune_shop/pkg/logger"
	"fortune_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeaderCronSecret 外部定时器调用时携带的共享密钥
const HeaderCronSecret = "X-Cron-Secret"

type JobHandler struct {
	cleaner service.FileCleaner
	secret  string
}

func NewJobHandler(cleaner service.FileCleaner, secret string) *JobHandler {
	return &JobHandler{cleaner: cleaner, secret: secret}
}

// CleanupExpiredFiles 删除超过保存期限的结果文件
// @Summary 清理过期结果文件
// @Tags job
// @Param X-Cron-Secret header string true "共享密钥"
// @Success 200 {object} response.Response{data=service.CleanupResult}
// @Router /jobs/cleanup-expired-files [post]
func (h *JobHandler) CleanupExpiredFiles(c *gin.Context) {
	// 未配置密钥时关闭该入口
	given := c.GetHeader(HeaderCronSecret)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) != 1 {
		response.Error(c, http.StatusUnauthorized, response.ErrNoPermission, "invalid cron secret")
		return
	}

	res, err := h.cleaner.CleanupExpired(c.Request.Context())
	if err != nil {
		logger.Log.Error("cleanup expired files failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, res)
}
