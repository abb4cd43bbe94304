package handlers

import (
	"net/http"
	"time"

	"github.com/formweave/formweave-go/internal/application/services"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/performance"
	"github.com/formweave/formweave-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// RepetitionHandlers contains the repetition add/remove HTTP handlers
type RepetitionHandlers struct {
	repetitionService *services.RepetitionService
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewRepetitionHandlers creates repetition handlers with injected dependencies
func NewRepetitionHandlers(repetitionService *services.RepetitionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *RepetitionHandlers {
	return &RepetitionHandlers{
		repetitionService: repetitionService,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// repeatRequest is the repetition add request: the client's current flat
// form data, the repetition element's name, and how many instances to add
type repeatRequest struct {
	FormData    map[string]any `json:"form_data" binding:"required"`
	ElementName string         `json:"element-name" binding:"required"`
	Increment   int            `json:"increment" binding:"required"`
}

// removeRequest addresses one repetition instance for local removal
type removeRequest struct {
	ElementName string `json:"element-name" binding:"required"`
	Index       int    `json:"index"`
}

// PostRepeat handles POST /api/v1/forms/:id/repeat - appends repetition
// instances and returns the rebuilt state. A 200 instructs the client to
// resync fully from the response.
func (h *RepetitionHandlers) PostRepeat(c *gin.Context) {
	formID := c.Param("id")
	start := time.Now()
	marker := h.perfTracker.StartOperation("post_repeat_request", formID)
	defer marker.Complete()

	sessionCtx, exists := middleware.GetSessionContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	var req repeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.repetitionService.Add(sessionCtx, formID, req.ElementName, req.FormData, req.Increment)
	if err != nil {
		h.logger.Engine().Error("Repetition add failed",
			"sessionId", sessionCtx.SessionID, "formId", formID,
			"element", req.ElementName, "error", err.Error(), "duration", time.Since(start))
		marker.SetSuccess(false)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"formId":   formID,
		"elements": state.Elements(),
		"data":     state.Data,
	})
}

// DeleteRepetition handles DELETE /api/v1/forms/:id/repetitions - removes
// one instance locally, bounded by the repetition's initial count. Refusal
// at the floor is not an error.
func (h *RepetitionHandlers) DeleteRepetition(c *gin.Context) {
	formID := c.Param("id")
	marker := h.perfTracker.StartOperation("delete_repetition_request", formID)
	defer marker.Complete()

	sessionCtx, exists := middleware.GetSessionContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	var req removeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, removed, err := h.repetitionService.Remove(sessionCtx, formID, req.ElementName, req.Index)
	if err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"formId":   formID,
		"removed":  removed,
		"elements": state.Elements(),
		"data":     state.Data,
	})
}
