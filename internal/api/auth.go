package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// adminAuth guards the admin routes with a configured token presented in the
// X-Admin-Token header. An empty configured token disables the admin
// interface instead of leaving it open.
func adminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "Admin interface is not configured"})
			return
		}

		provided := c.GetHeader("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": "Invalid admin credentials"})
			return
		}

		c.Next()
	}
}
