package handler

import (
	"errors"
	"net/http"
	"fortune_shop/internal/domain/product/service"
	"fortune_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(service service.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List 在售商品
// @Summary 商品列表
// @Tags product
// @Success 200 {object} response.Response{data=[]model.Product}
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, product)
}

func (h *ProductHandler) AdminList(c *gin.Context) {
	products, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, products)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	product, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	product, err := h.service.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, product)
}

func (h *ProductHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		response.Error(c, http.StatusNotFound, response.ErrProductNotFound, "Product not found")
	case errors.Is(err, service.ErrInvalidPrice):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}
