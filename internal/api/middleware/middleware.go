package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/session"
)

// RequireAuth rejects requests when the session holds no credentials.
func RequireAuth(sess *session.Session, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sess.IsAuthenticated() {
			logger.Debug("Rejected unauthenticated request", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireStaff rejects requests from non-staff sessions.
func RequireStaff(sess *session.Session, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sess.IsStaff() {
			logger.Warn("Rejected non-staff request", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}
