package user

import (
	"go-leaveflow/internal/domain"
	"go-leaveflow/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.POST("", middleware.RoleMiddleware(domain.RoleHR), h.Create)
		users.GET("", middleware.RoleMiddleware(domain.RoleManager, domain.RoleHR), h.GetAll)
		users.GET("/:id", h.GetByID)
		users.PUT("/:id", h.Update)
		users.PUT("/:id/balances", middleware.RoleMiddleware(domain.RoleHR), h.SetBalance)
	}
}
