package leave

import (
	"go-leaveflow/internal/domain"
	"go-leaveflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rdb *redis.Client) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("", middleware.Idempotency(rdb), h.Create)
		leaves.GET("", h.List)
		leaves.GET("/:id", h.GetByID)
		leaves.PUT("/:id", h.Update)
		leaves.DELETE("/:id", h.Cancel)
		leaves.POST("/:id/approve", middleware.RoleMiddleware(domain.RoleManager, domain.RoleHR), h.Approve)
		leaves.POST("/:id/reject", middleware.RoleMiddleware(domain.RoleManager, domain.RoleHR), h.Reject)
		leaves.PUT("/:id/override", middleware.RoleMiddleware(domain.RoleHR), h.Override)
		leaves.POST("/bulk-approve", middleware.RoleMiddleware(domain.RoleManager, domain.RoleHR), middleware.Idempotency(rdb), h.BulkApprove)
	}
}
