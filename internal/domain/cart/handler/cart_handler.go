package handler

import (
	"errors"
	"net/http"
	"fortune_shop/internal/domain/cart/model"
	"fortune_shop/internal/domain/cart/service"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(service service.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// cartView 附带合计
type cartView struct {
	*model.Cart
	Total int64 `json:"total"`
}

func view(c *model.Cart) cartView {
	return cartView{Cart: c, Total: c.Total()}
}

func (h *CartHandler) Get(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	cart, err := h.service.Get(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view(cart))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var input service.AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	uid, _ := middleware.CurrentUserID(c)
	cart, err := h.service.AddItem(c.Request.Context(), uid, input)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view(cart))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	cart, err := h.service.RemoveItem(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view(cart))
}

func (h *CartHandler) Clear(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	if err := h.service.Clear(c.Request.Context(), uid); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *CartHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		response.Error(c, http.StatusNotFound, response.ErrCartItemNotFound, "Cart item not found")
	case errors.Is(err, service.ErrProductUnavailable):
		response.Error(c, http.StatusBadRequest, response.ErrProductNotFound, "Product is not available")
	case errors.Is(err, service.ErrInvalidPersons):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}
