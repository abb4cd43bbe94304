package handlers

import (
	"net/http"

	"github.com/formweave/formweave-go/internal/application/container"
	"github.com/gin-gonic/gin"
)

// HealthHandlers contains the liveness HTTP handlers
type HealthHandlers struct {
	container *container.Container
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(container *container.Container) *HealthHandlers {
	return &HealthHandlers{container: container}
}

// GetHealth handles GET /api/v1/health
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := h.container.DB.Ping(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"forms":    len(h.container.FormService.IDs()),
		"sessions": h.container.SessionStore.Count(),
		"uptime":   h.container.PerfTracker.Uptime().String(),
	})
}
