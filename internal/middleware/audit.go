package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit records a structured audit line after a successful configuration or
// history mutation.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		actor := "anonymous"
		role := ""
		if claims, ok := CurrentClaims(c); ok {
			actor = claims.Subject
			role = string(claims.Role)
		}

		logger.Info(action,
			zap.String("actor", actor),
			zap.String("role", role),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("resource_id", c.Param("id")+c.Param("name")),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
		)
	}
}
