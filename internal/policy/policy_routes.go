package policy

import (
	"go-leaveflow/internal/domain"
	"go-leaveflow/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	policies := r.Group("/policies")
	policies.Use(middleware.AuthMiddleware())
	{
		policies.GET("", h.List)
		policies.GET("/:type", h.Get)
		policies.PUT("/:type", middleware.RoleMiddleware(domain.RoleHR), h.Update)
	}
}
