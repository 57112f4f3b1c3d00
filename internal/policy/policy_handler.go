package policy

import (
	"net/http"
	"strings"

	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) List(c *gin.Context) {
	policies, err := h.service.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, policies, nil)
}

func (h *Handler) Get(c *gin.Context) {
	leaveType := strings.ToUpper(c.Param("type"))

	policy, err := h.service.Get(c.Request.Context(), leaveType)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, policy, nil)
}

func (h *Handler) Update(c *gin.Context) {
	leaveType := strings.ToUpper(c.Param("type"))

	var req UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	policy, err := h.service.Update(c.Request.Context(), c.GetString("user_id"), leaveType, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, policy, nil)
}
