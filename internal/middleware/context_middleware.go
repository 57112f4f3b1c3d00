package middleware

import (
	"go-leaveflow/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
)

// ClientContext captures the caller's network identity into the request
// context. The audit recorder reads it from there, so handlers and services
// stay free of transport details.
func ClientContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := contextutil.WithClientInfo(c.Request.Context(), contextutil.ClientInfo{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
