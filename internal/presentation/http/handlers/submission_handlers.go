package handlers

import (
	"net/http"
	"time"

	"github.com/formweave/formweave-go/internal/application/services"
	"github.com/formweave/formweave-go/internal/domain/entities/forms"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/performance"
	"github.com/formweave/formweave-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SubmissionHandlers contains the submission pipeline HTTP handlers
type SubmissionHandlers struct {
	submissionService *services.SubmissionService
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewSubmissionHandlers creates submission handlers with injected dependencies
func NewSubmissionHandlers(submissionService *services.SubmissionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SubmissionHandlers {
	return &SubmissionHandlers{
		submissionService: submissionService,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// submitRequest carries the flat serialized form entries. Entries preserve
// duplicate names, which the pipeline collapses into arrays.
type submitRequest struct {
	Entries []forms.FormEntry `json:"entries" binding:"required"`
}

// PostSubmit handles POST /api/v1/forms/:id/submit
func (h *SubmissionHandlers) PostSubmit(c *gin.Context) {
	formID := c.Param("id")
	start := time.Now()
	marker := h.perfTracker.StartOperation("post_submit_request", formID)
	defer marker.Complete()

	sessionCtx, exists := middleware.GetSessionContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.submissionService.Submit(sessionCtx, formID, req.Entries)
	if err != nil {
		h.logger.Submission().Error("Submission failed",
			"sessionId", sessionCtx.SessionID, "formId", formID,
			"error", err.Error(), "duration", time.Since(start))
		marker.SetSuccess(false)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostSubmit request", "duration", time.Since(start), "formId", formID, "success", true)
	c.JSON(http.StatusCreated, gin.H{
		"status":       "submitted",
		"submissionId": submission.ID,
		"formId":       formID,
	})
}
