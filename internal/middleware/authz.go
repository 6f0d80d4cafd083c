package middleware

import (
	"net/http"

	"dropskills/internal/authz"
	"dropskills/internal/logger"

	"github.com/gin-gonic/gin"
)

// Authorize checks the caller's effective role against the casbin policy.
// It must run after Auth.Required.
func Authorize(enf *authz.Enforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := enf.Role(UserRole(c), UserEmail(c))
		ok, err := enf.Allow(role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			logger.Error("authz.enforce.failed", "path", c.Request.URL.Path, "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authorization failed"})
			return
		}
		if !ok {
			logger.Warn("authz.denied", "uid", UserID(c), "role", role, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
