package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillforge/api/internal/config"
	"skillforge/api/internal/security"
)

// AdminSession gates dashboard routes behind the signed session cookie.
// Missing, expired, tampered, and wrong-identity tokens all produce the same
// generic 401; the failing check is never disclosed.
func AdminSession(cfg config.SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !security.IsAuthenticated(c.Request, cfg.SessionSecret, cfg.AdminUser, cfg.CookieName) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized: admin session required",
			})
			return
		}
		c.Next()
	}
}
