package handlers

import (
	"errors"
	"net/http"

	"github.com/formweave/formweave-go/internal/application/services"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// AuthHandlers contains the authentication HTTP handlers
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// PostLogin handles POST /api/v1/auth/login - issues an editor token
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_login_request", "")
	defer marker.Complete()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		marker.SetSuccess(false)
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetAuthStatus handles GET /api/v1/auth/status - reports token validity
func (h *AuthHandlers) GetAuthStatus(c *gin.Context) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": h.authService.Validate(header[len(prefix):])})
}
