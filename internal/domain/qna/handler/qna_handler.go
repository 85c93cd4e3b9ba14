package handler

import (
	"errors"
	"net/http"
	"strconv"
	"fortune_shop/internal/domain/qna/service"
	"fortune_shop/internal/pkg/middleware"
	"fortune_shop/pkg/response"
	"fortune_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// HeaderGuestPassword 游客查看/修改/删除私密问题时携带
const HeaderGuestPassword = "X-Guest-Password"

type QnAHandler struct {
	service service.QnAService
}

func NewQnAHandler(s service.QnAService) *QnAHandler {
	return &QnAHandler{service: s}
}

// AnswerInput 管理员回答
type AnswerInput struct {
	Answer string `json:"answer" binding:"required,max=5000"`
}

func viewer(c *gin.Context) service.Viewer {
	uid, _ := middleware.CurrentUserID(c)
	return service.Viewer{
		UserID: uid,
		Email:  middleware.CurrentEmail(c),
		Admin:  middleware.IsAdmin(c),
	}
}

// Create 提问
// @Summary 提问
// @Description 游客需要设置密码，会员可不填
// @Tags qna
// @Param body body service.CreateInput true "问题"
// @Success 201 {object} response.Response{data=service.View}
// @Router /qna [post]
func (h *QnAHandler) Create(c *gin.Context) {
	var input service.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	v, err := h.service.Create(c.Request.Context(), viewer(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, v)
}

// List 问答列表
// @Summary 问答列表
// @Tags qna
// @Param answered query bool false "是否已回答"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /qna [get]
func (h *QnAHandler) List(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	var answered *bool
	if raw := c.Query("answered"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "answered must be true or false")
			return
		}
		answered = &b
	}
	list, total, err := h.service.List(c.Request.Context(), viewer(c), answered, &p)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

func (h *QnAHandler) Get(c *gin.Context) {
	v, err := h.service.Get(c.Request.Context(), viewer(c), c.Param("id"), c.GetHeader(HeaderGuestPassword))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, v)
}

func (h *QnAHandler) Update(c *gin.Context) {
	var input service.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	v, err := h.service.Update(c.Request.Context(), viewer(c), c.Param("id"), c.GetHeader(HeaderGuestPassword), input)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, v)
}

func (h *QnAHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), viewer(c), c.Param("id"), c.GetHeader(HeaderGuestPassword)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, "Question deleted")
}

func (h *QnAHandler) Answer(c *gin.Context) {
	var input AnswerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	v, err := h.service.Answer(c.Request.Context(), c.Param("id"), input.Answer)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, v)
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQnANotFound):
		response.Error(c, http.StatusNotFound, response.ErrQnANotFound, "Question not found")
	case errors.Is(err, service.ErrPasswordRequired):
		response.Error(c, http.StatusUnauthorized, response.ErrQnAPasswordWrong, err.Error())
	case errors.Is(err, service.ErrPasswordWrong):
		response.Error(c, http.StatusForbidden, response.ErrQnAPasswordWrong, "Password does not match")
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrAlreadyAnswered):
		response.Error(c, http.StatusForbidden, response.ErrQnAForbidden, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}
