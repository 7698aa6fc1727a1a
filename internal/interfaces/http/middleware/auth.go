// Package middleware holds the Gin middleware for the HTTP interface.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"veil/internal/infrastructure/auth"
	"veil/internal/shared/constants"
	"veil/internal/shared/logger"
	"veil/internal/shared/utils"
)

type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, log logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     log,
	}
}

// RequireAuth verifies the bearer token and stores the caller's identity in
// the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid token subject")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyIsAdmin, claims.IsAdmin)

		c.Next()
	}
}

// RequireAdmin gates a route to admin accounts. Must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(constants.ContextKeyIsAdmin) {
			utils.ErrorResponse(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserIDFromContext reads the authenticated user ID stored by RequireAuth.
func UserIDFromContext(c *gin.Context) (uint, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
