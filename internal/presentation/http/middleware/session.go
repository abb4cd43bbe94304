package middleware

import (
	"net/http"

	"github.com/formweave/formweave-go/internal/application/services"
	"github.com/formweave/formweave-go/internal/domain/entities/session"
	"github.com/gin-gonic/gin"
)

// SessionHeader carries the client's session identifier
const SessionHeader = "X-FormWeave-Session-ID"

const sessionContextKey = "formweave_session"

// SessionMiddleware resolves the engine session context from the session
// header and aborts with 400 when the header is missing.
func SessionMiddleware(sessionService *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Session ID required"})
			return
		}

		ctx, err := sessionService.Resolve(sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session could not be created"})
			return
		}

		c.Set(sessionContextKey, ctx)
		c.Next()
	}
}

// GetSessionContext retrieves the session context placed by SessionMiddleware
func GetSessionContext(c *gin.Context) (*session.Context, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	ctx, ok := value.(*session.Context)
	return ctx, ok
}
