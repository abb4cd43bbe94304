package handlers

import (
	"net/http"
	"time"

	"github.com/formweave/formweave-go/internal/application/services"
	"github.com/formweave/formweave-go/internal/domain/events"
	"github.com/formweave/formweave-go/internal/infrastructure/messaging"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/performance"
	"github.com/formweave/formweave-go/internal/presentation/http/middleware"
	"github.com/formweave/formweave-go/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// StateHandlers contains the form state and change event HTTP handlers
type StateHandlers struct {
	stateService   *services.StateService
	sessionService *services.SessionService
	broadcaster    *messaging.Broadcaster
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
	upgrader       websocket.Upgrader
}

// NewStateHandlers creates state handlers with injected dependencies
func NewStateHandlers(stateService *services.StateService, sessionService *services.SessionService, broadcaster *messaging.Broadcaster, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StateHandlers {
	return &StateHandlers{
		stateService:   stateService,
		sessionService: sessionService,
		broadcaster:    broadcaster,
		logger:         logger,
		perfTracker:    perfTracker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.WSReadBufferSize,
			WriteBufferSize: config.WSWriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// stateChangeRequest is the body of a control change event
type stateChangeRequest struct {
	FormID  string `json:"formId" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Value   string `json:"value"`
	Checked *bool  `json:"checked"`
}

// PostState handles POST /api/v1/state - processes one control change event
// and returns the computed effect updates
func (h *StateHandlers) PostState(c *gin.Context) {
	start := time.Now()

	sessionCtx, exists := middleware.GetSessionContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	var req stateChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marker := h.perfTracker.StartOperation("post_state_request", req.FormID)
	defer marker.Complete()

	change := events.ControlChange{Name: req.Name, Value: req.Value, Checked: req.Checked}
	updates, err := h.stateService.HandleChange(sessionCtx, req.FormID, change)
	if err != nil {
		h.logger.Engine().Error("State change processing failed",
			"sessionId", sessionCtx.SessionID, "formId", req.FormID,
			"control", req.Name, "error", err.Error(), "duration", time.Since(start))
		marker.SetSuccess(false)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostState request", "duration", time.Since(start), "formId", req.FormID, "success", true)
	c.JSON(http.StatusOK, gin.H{
		"formId":  req.FormID,
		"updates": updates,
	})
}

// GetState handles GET /api/v1/forms/:id/state - returns the session's
// evaluated form state
func (h *StateHandlers) GetState(c *gin.Context) {
	formID := c.Param("id")
	marker := h.perfTracker.StartOperation("get_state_request", formID)
	defer marker.Complete()

	sessionCtx, exists := middleware.GetSessionContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	state, err := h.sessionService.EnsureFormState(sessionCtx, formID)
	if err != nil {
		marker.SetError(err)
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

// GetStateWS handles GET /api/v1/state/ws - streams effect updates for the
// session over a websocket connection
func (h *StateHandlers) GetStateWS(c *gin.Context) {
	sessionCtx, exists := middleware.GetSessionContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WS().Error("Websocket upgrade failed", "sessionId", sessionCtx.SessionID, "error", err.Error())
		return
	}

	ch := h.broadcaster.AddClient(sessionCtx.SessionID)
	h.logger.WS().Info("Websocket stream opened", "sessionId", sessionCtx.SessionID)

	// Reader goroutine drains control frames and signals close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(config.WSPingInterval)
	defer func() {
		ticker.Stop()
		h.broadcaster.RemoveClient(sessionCtx.SessionID, ch)
		conn.Close()
		h.logger.WS().Info("Websocket stream closed", "sessionId", sessionCtx.SessionID)
	}()

	for {
		select {
		case payload := <-ch:
			conn.SetWriteDeadline(time.Now().Add(config.WSWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(config.WSWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
