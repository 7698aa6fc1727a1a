package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"veil/internal/infrastructure/ratelimit"
	"veil/internal/shared/constants"
	"veil/internal/shared/utils"
)

// RateLimit enforces the per-caller request limit. Authenticated callers
// are keyed by user ID, anonymous ones by client IP. The limiter fails
// open when Redis is unavailable.
func RateLimit(limiter ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var key string
		if userID, ok := UserIDFromContext(c); ok {
			key = fmt.Sprintf("%s%d", constants.CacheKeyRateLimitUserPfx, userID)
		} else {
			key = constants.CacheKeyRateLimitAnonPfx + utils.ClientIP(c.Request)
		}

		result := limiter.Allow(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
