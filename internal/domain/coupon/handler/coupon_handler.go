package handler

import (
	"errors"
	"net/http"
	"strconv"
	"fortune_shop/internal/domain/coupon/service"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/pkg/response"
	"fortune_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	service service.CouponService
}

func NewCouponHandler(service service.CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

// CreateCoupon 创建优惠券
// @Summary 创建优惠券
// @Tags coupon
// @Security Bearer
// @Param body body service.CreateCouponInput true "优惠券"
// @Success 201 {object} response.Response{data=model.Coupon}
// @Router /admin/coupons [post]
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var input service.CreateCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	coupon, err := h.service.CreateCoupon(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, coupon)
}

func (h *CouponHandler) ListCoupons(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	list, total, err := h.service.ListCoupons(c.Request.Context(), &p)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

func (h *CouponHandler) ClaimCoupon(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	if err := h.service.ClaimCoupon(c.Request.Context(), uid, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, "Coupon claimed successfully")
}

// SendCouponInput 管理员发券输入
type SendCouponInput struct {
	UserID   string `json:"userId" binding:"required,uuid"`
	CouponID string `json:"couponId" binding:"required,uuid"`
}

// SendCoupon 管理员给指定用户发券
func (h *CouponHandler) SendCoupon(c *gin.Context) {
	var input SendCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.SendCouponToUser(c.Request.Context(), input.UserID, input.CouponID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, "Coupon sent to user successfully")
}

// ListMine 我的优惠券，?used=true|false 过滤
func (h *CouponHandler) ListMine(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)

	var used *bool
	if raw := c.Query("used"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "used must be true or false")
			return
		}
		used = &v
	}

	list, err := h.service.ListMyCoupons(c.Request.Context(), uid, used)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, list)
}

func (h *CouponHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		response.Error(c, http.StatusNotFound, response.ErrCouponNotFound, "Coupon not found")
	case errors.Is(err, service.ErrCouponOutOfStock):
		response.Fail(c, response.ErrCouponOutOfStock, "Coupon out of stock")
	case errors.Is(err, service.ErrCouponClaimed):
		response.Fail(c, response.ErrCouponClaimed, "Coupon already claimed")
	case errors.Is(err, service.ErrCouponUnusable):
		response.Fail(c, response.ErrCouponUnusable, "Coupon is not available")
	case errors.Is(err, service.ErrCouponInvalid):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "percent discount must be between 1 and 100")
	case errors.Is(err, service.ErrCouponExists):
		response.Error(c, http.StatusConflict, response.ErrCouponExists, "Coupon code already exists")
	case errors.Is(err, service.ErrBusy):
		response.Error(c, http.StatusServiceUnavailable, response.ErrTooManyRequests, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}
