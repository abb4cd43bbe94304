// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/formweave/formweave-go/internal/application/services"
	"github.com/formweave/formweave-go/internal/domain/entities/forms"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/performance"
	"github.com/formweave/formweave-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// FormHandlers contains the form definition HTTP handlers
type FormHandlers struct {
	formService    *services.FormService
	sessionService *services.SessionService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewFormHandlers creates form handlers with injected dependencies
func NewFormHandlers(formService *services.FormService, sessionService *services.SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *FormHandlers {
	return &FormHandlers{
		formService:    formService,
		sessionService: sessionService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// GetForm handles GET /api/v1/forms/:id - returns the contextualized form
// for the caller's session, repetitions expanded and placeholders replaced
func (h *FormHandlers) GetForm(c *gin.Context) {
	formID := c.Param("id")
	marker := h.perfTracker.StartOperation("get_form_request", formID)
	defer marker.Complete()

	sessionCtx, exists := middleware.GetSessionContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	def, ok := h.formService.Get(formID)
	if !ok {
		marker.SetSuccess(false)
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
		return
	}

	state, err := h.sessionService.EnsureFormState(sessionCtx, formID)
	if err != nil {
		h.handleStateError(c, marker, formID, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"formId":   formID,
		"title":    def.Title,
		"elements": state.Elements(),
	})
}

// ListForms handles GET /api/v1/forms - returns the available form IDs
func (h *FormHandlers) ListForms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"forms": h.formService.IDs()})
}

// PutForm handles PUT /api/v1/forms/:id - creates or replaces a definition
func (h *FormHandlers) PutForm(c *gin.Context) {
	formID := c.Param("id")
	start := time.Now()
	marker := h.perfTracker.StartOperation("put_form_request", formID)
	defer marker.Complete()

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body required"})
		return
	}

	def, err := forms.ParseFormDefinition(raw)
	if err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	def.ID = formID

	if err := h.formService.Save(def, raw); err != nil {
		h.logger.System().Error("Form save failed", "formId", formID, "error", err.Error())
		marker.SetSuccess(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save form"})
		return
	}

	h.logger.System().Info("Form definition updated", "formId", formID, "duration", time.Since(start))
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"formId": formID, "status": "saved"})
}

// DeleteForm handles DELETE /api/v1/forms/:id
func (h *FormHandlers) DeleteForm(c *gin.Context) {
	formID := c.Param("id")
	marker := h.perfTracker.StartOperation("delete_form_request", formID)
	defer marker.Complete()

	if err := h.formService.Delete(formID); err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"formId": formID, "status": "deleted"})
}

// handleStateError maps state build failures to responses. Malformed
// condition declarations are a developer-facing contract and surface as 422.
func (h *FormHandlers) handleStateError(c *gin.Context, marker *performance.Marker, formID string, err error) {
	marker.SetError(err)

	var condErr *forms.InvalidConditionError
	if asInvalidCondition(err, &condErr) {
		h.logger.Engine().Error("Invalid condition declaration", "formId", formID, "error", err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	h.logger.System().Error("Form state build failed", "formId", formID, "error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build form state"})
}
