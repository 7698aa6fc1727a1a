package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"veil/internal/shared/constants"
	"veil/internal/shared/logger"
)

// Logger records one structured entry per request, levelled by status.
func Logger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"body_size", c.Writer.Size(),
		}

		if requestID := c.Writer.Header().Get("X-Request-ID"); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		if userID, exists := c.Get(constants.ContextKeyUserID); exists {
			args = append(args, "user_id", userID)
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Errorw("HTTP request completed", args...)
		case status >= 400:
			log.Warnw("HTTP request completed", args...)
		default:
			log.Debugw("HTTP request completed", args...)
		}
	}
}
