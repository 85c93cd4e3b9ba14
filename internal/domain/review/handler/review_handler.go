package handler

import (
	"errors"
	"net/http"
	"strconv"
	"fortune_shop/internal/domain/review/service"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/internal/pkg/uploader"
	"fortune_shop/pkg/response"
	"fortune_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	service service.ReviewService
}

func NewReviewHandler(s service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: s}
}

// ApprovalInput 公开/隐藏评价
type ApprovalInput struct {
	Approved *bool `json:"approved" binding:"required"`
}

// Create 发表评价，图片可选
// @Summary 发表评价
// @Tags review
// @Security Bearer
// @Accept multipart/form-data
// @Param orderId formData string true "订单ID"
// @Param rating formData int true "评分 1-5"
// @Param content formData string true "内容"
// @Param image formData file false "图片，最大 5MB"
// @Success 201 {object} response.Response{data=model.Review}
// @Router /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	var input service.CreateReviewInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	var image *service.Image
	if fh, err := c.FormFile("image"); err == nil {
		f, contentType, err := uploader.OpenValidated(fh, uploader.ReviewImageRule)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidReviewFile, err.Error())
			return
		}
		defer f.Close()
		image = &service.Image{Body: f, Size: fh.Size, ContentType: contentType, Filename: fh.Filename}
	}

	uid, _ := middleware.CurrentUserID(c)
	review, err := h.service.Create(c.Request.Context(), uid, input, image)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, review)
}

// ListApproved 公开评价
// @Summary 评价列表
// @Tags review
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response{data=service.PublicList}
// @Router /reviews [get]
func (h *ReviewHandler) ListApproved(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	res, err := h.service.ListApproved(c.Request.Context(), &p)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

func (h *ReviewHandler) ListMine(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	uid, _ := middleware.CurrentUserID(c)
	list, total, err := h.service.ListMine(c.Request.Context(), uid, &p)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

// AdminList ?approved=true|false，不传返回全部
func (h *ReviewHandler) AdminList(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	var approved *bool
	if raw := c.Query("approved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "approved must be true or false")
			return
		}
		approved = &v
	}
	list, total, err := h.service.AdminList(c.Request.Context(), approved, &p)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

func (h *ReviewHandler) SetApproval(c *gin.Context) {
	var input ApprovalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	review, err := h.service.SetApproval(c.Request.Context(), c.Param("id"), *input.Approved)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, review)
}

func (h *ReviewHandler) Reply(c *gin.Context) {
	var input service.ReplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	review, err := h.service.Reply(c.Request.Context(), c.Param("id"), input.Reply)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), uid, middleware.IsAdmin(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, "Review deleted")
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		response.Error(c, http.StatusNotFound, response.ErrReviewNotFound, "Review not found")
	case errors.Is(err, service.ErrReviewExists):
		response.Error(c, http.StatusConflict, response.ErrReviewExists, "Order already reviewed")
	case errors.Is(err, service.ErrReviewNotAllowed):
		response.Error(c, http.StatusForbidden, response.ErrReviewNotAllowed, err.Error())
	case errors.Is(err, service.ErrStorage):
		response.Error(c, http.StatusBadGateway, response.ErrStorageUnavailable, "File storage is unavailable")
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}
