package middleware

import (
	"net/http"
	"strings"

	"github.com/formweave/formweave-go/internal/application/services"
	"github.com/gin-gonic/gin"
)

// EditorAuthMiddleware protects form mutation routes with editor JWT auth
func EditorAuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		if !authService.Validate(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Next()
	}
}
