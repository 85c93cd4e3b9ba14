package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	cartService "fortune_shop/internal/domain/cart/service"
	couponService "fortune_shop/internal/domain/coupon/service"
	"fortune_shop/internal/domain/order/model"
	"fortune_shop/internal/domain/order/repository"
	"fortune_shop/internal/domain/order/service"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/internal/pkg/uploader"
	"fortune_shop/pkg/response"
	"fortune_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey 客户端为一次结算生成的唯一键
const HeaderIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// CancelInput 取消原因
type CancelInput struct {
	Reason string `json:"reason" binding:"max=500"`
}

// Checkout 结算
// @Summary 结算下单
// @Description 每个被分析人生成一条订单，返回无通帐入金信息
// @Tags order
// @Security Bearer
// @Param Idempotency-Key header string false "防重复提交"
// @Param body body service.CheckoutInput true "结算信息"
// @Success 201 {object} response.Response{data=service.CheckoutResult}
// @Router /orders [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var input service.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	if input.CartItemID == "" && input.ProductID == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "productId or cartItemId is required")
		return
	}
	input.SubmitKey = c.GetHeader(HeaderIdempotencyKey)

	uid, _ := middleware.CurrentUserID(c)
	res, err := h.service.Checkout(c.Request.Context(), uid, input)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, res)
}

// ListMine 我的订单
// @Summary 我的订单
// @Tags order
// @Security Bearer
// @Param page query int false "页码"
// @Param pageSize query int false "每页数量"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
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

func (h *OrderHandler) GetMine(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	o, err := h.service.GetMine(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, o)
}

// Cancel 开始分析前可直接取消，原因可不填
func (h *OrderHandler) Cancel(c *gin.Context) {
	var input CancelInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	uid, _ := middleware.CurrentUserID(c)
	o, err := h.service.Cancel(c.Request.Context(), uid, c.Param("id"), input.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, o)
}

// RequestCancel 申请取消，等待管理员处理
func (h *OrderHandler) RequestCancel(c *gin.Context) {
	var input CancelInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	uid, _ := middleware.CurrentUserID(c)
	o, err := h.service.RequestCancel(c.Request.Context(), uid, c.Param("id"), input.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, o)
}

// PaymentInfo 入金账户与金额
// @Summary 入金信息
// @Tags order
// @Security Bearer
// @Param id path string true "订单ID"
// @Success 200 {object} response.Response{data=payment.Instructions}
// @Router /orders/{id}/payment [get]
func (h *OrderHandler) PaymentInfo(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	ins, err := h.service.PaymentInstructions(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, ins)
}

// DownloadResult 跳转到短时效的下载地址
func (h *OrderHandler) DownloadResult(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	url, err := h.service.ResultDownloadURL(c.Request.Context(), uid, c.Param("id"), middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// AdminList 按状态、订单号筛选
// @Summary 订单列表（管理员）
// @Tags admin
// @Security Bearer
// @Param status query string false "状态"
// @Param orderNumber query string false "订单号"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /admin/orders [get]
func (h *OrderHandler) AdminList(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	f := repository.Filter{
		Status:      model.Status(c.Query("status")),
		OrderNumber: c.Query("orderNumber"),
		UserID:      c.Query("userId"),
	}
	list, total, err := h.service.AdminList(c.Request.Context(), f, &p)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

func (h *OrderHandler) AdminGet(c *gin.Context) {
	o, err := h.service.AdminGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, o)
}

func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	h.adminTransition(c, h.service.ConfirmPayment)
}

func (h *OrderHandler) StartProcessing(c *gin.Context) {
	h.adminTransition(c, h.service.StartProcessing)
}

func (h *OrderHandler) CompleteWithoutFile(c *gin.Context) {
	h.adminTransition(c, h.service.CompleteWithoutFile)
}

func (h *OrderHandler) ApproveCancel(c *gin.Context) {
	h.adminTransition(c, h.service.ApproveCancel)
}

// UploadResult 上传分析结果并完成订单
// @Summary 上传结果文件
// @Tags admin
// @Security Bearer
// @Accept multipart/form-data
// @Param id path string true "订单ID"
// @Param file formData file true "PDF 或 ZIP，最大 30MB"
// @Success 200 {object} response.Response{data=model.Order}
// @Router /admin/orders/{id}/result [post]
func (h *OrderHandler) UploadResult(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidResultFile, "file is required")
		return
	}

	// 校验在本地完成，不合格的文件不会到达对象存储
	f, contentType, err := uploader.OpenValidated(fh, uploader.ResultFileRule)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidResultFile, err.Error())
		return
	}
	defer f.Close()

	o, err := h.service.UploadResult(c.Request.Context(), c.Param("id"), service.ResultFile{
		Body:        f,
		Size:        fh.Size,
		ContentType: contentType,
		Filename:    fh.Filename,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, o)
}

func (h *OrderHandler) adminTransition(c *gin.Context, fn func(ctx context.Context, id string) (*model.Order, error)) {
	o, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, o)
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Order not found")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, response.ErrInvalidTransition, "Order status does not allow this action")
	case errors.Is(err, service.ErrProductUnavailable):
		response.Error(c, http.StatusBadRequest, response.ErrProductNotFound, "Product is not available")
	case errors.Is(err, service.ErrInvalidPersons):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
	case errors.Is(err, service.ErrDuplicateCheckout):
		response.Error(c, http.StatusConflict, response.ErrDuplicateSubmit, "Checkout already submitted")
	case errors.Is(err, service.ErrNoResultFile):
		response.Error(c, http.StatusNotFound, response.ErrNoResultFile, "Result file is not available")
	case errors.Is(err, service.ErrResultFileExpired):
		response.Error(c, http.StatusGone, response.ErrResultFileExpired, "Result file has expired")
	case errors.Is(err, service.ErrStorage):
		response.Error(c, http.StatusBadGateway, response.ErrStorageUnavailable, "File storage is unavailable")
	case errors.Is(err, cartService.ErrItemNotFound):
		response.Error(c, http.StatusNotFound, response.ErrCartItemNotFound, "Cart item not found")
	case errors.Is(err, couponService.ErrCouponNotFound):
		response.Error(c, http.StatusNotFound, response.ErrCouponNotFound, "Coupon not found")
	case errors.Is(err, couponService.ErrCouponUnusable):
		response.Fail(c, response.ErrCouponUnusable, "Coupon is not available")
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}
