package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/shared/utils"
)

type contextKey string

const clientIPKey contextKey = "client_ip"

// ClientIPMiddleware resolves the real client IP (behind proxies) and injects
// it into both the gin context and the request context. The payment gateways
// require the client IP in their signed payloads, so this must run before any
// payment route.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.ExtractClientIP(c)

		c.Set("client_ip", clientIP)

		ctx := context.WithValue(c.Request.Context(), clientIPKey, clientIP)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetClientIPFromContext returns the extracted IP, or "" when not present.
func GetClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok {
		return ip
	}
	return ""
}
