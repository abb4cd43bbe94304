package routes

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/formweave/formweave-go/internal/application/container"
	"github.com/formweave/formweave-go/internal/application/services"
	"github.com/formweave/formweave-go/internal/infrastructure/caching"
	schema "github.com/formweave/formweave-go/internal/infrastructure/database"
	"github.com/formweave/formweave-go/internal/infrastructure/messaging"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/performance"
	"github.com/formweave/formweave-go/internal/infrastructure/persistence/database"
	formstore "github.com/formweave/formweave-go/internal/infrastructure/persistence/forms"
	"github.com/formweave/formweave-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoForm = `{
	"id": "demo",
	"general": [
		{"kind": "checkbox", "name": "show"},
		{"kind": "input", "name": "detail",
			"hide_if": [{"kind": "is_not_checked", "name": "show"}]},
		{"kind": "repetition", "name": "rows", "initial_repetitions": 2, "increment": 1,
			"elements": [{"kind": "input", "name": "title"}]}
	]
}`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	formsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(formsDir, "demo.json"), []byte(demoForm), 0644))

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile: true,
		LogDirectory: t.TempDir(),
		JSONFormat:   true,
		DefaultLevel: slog.LevelError,
	})
	require.NoError(t, err)

	db, err := database.NewConnection("sqlite3", filepath.Join(t.TempDir(), "routes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, schema.NewTableCreator().CreateSchema(db.DB))

	formSvc := services.NewFormService(formsDir, logger)
	require.NoError(t, formSvc.LoadAll())

	store := caching.NewSessionStore(100, time.Hour, logger)
	stateRepo := formstore.NewStateRepository(db, logger)
	subRepo := formstore.NewSubmissionRepository(db, logger)
	evaluation := services.NewEvaluationService(logger)
	sessionSvc := services.NewSessionService(store, stateRepo, formSvc, evaluation, logger)
	broadcaster := messaging.NewBroadcaster(8, logger)

	c := &container.Container{
		FormService:       formSvc,
		EvaluationService: evaluation,
		SessionService:    sessionSvc,
		StateService:      services.NewStateService(sessionSvc, evaluation, stateRepo, broadcaster, logger),
		RepetitionService: services.NewRepetitionService(sessionSvc, logger),
		SubmissionService: services.NewSubmissionService(formSvc, sessionSvc, subRepo, logger),
		AuthService:       services.NewAuthService("test-secret", "letmein", time.Hour, logger),

		DB:             db,
		SessionStore:   store,
		StateRepo:      stateRepo,
		SubmissionRepo: subRepo,
		Broadcaster:    broadcaster,
		Logger:         logger,
		PerfTracker:    performance.NewTracker(performance.DefaultTrackerConfig()),
	}
	return SetupRoutes(c)
}

func doRequest(t *testing.T, router *gin.Engine, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(t, router, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["forms"])
}

func TestGetFormRequiresSessionHeader(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(t, router, http.MethodGet, "/api/v1/forms/demo", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFormReturnsContextualizedElements(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(t, router, http.MethodGet, "/api/v1/forms/demo", "s1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "demo", body["formId"])
	assert.Contains(t, w.Body.String(), "general[rows][2][title]")
}

func TestGetFormUnknownID(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(t, router, http.MethodGet, "/api/v1/forms/nope", "s1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostStateChange(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/state", "s1", map[string]any{
		"formId":  "demo",
		"name":    "general[show]",
		"checked": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	updates, ok := body["updates"].([]any)
	require.True(t, ok)
	require.Len(t, updates, 1)
	update := updates[0].(map[string]any)
	assert.Equal(t, "general[detail]", update["elementId"])
}

func TestPostStateValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/state", "s1", map[string]any{"formId": "demo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/state", "s1", map[string]any{
		"formId": "demo",
		"name":   "general[ghost]",
		"value":  "x",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetStateReturnsData(t *testing.T) {
	router := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/api/v1/state", "s1", map[string]any{
		"formId": "demo",
		"name":   "general[detail]",
		"value":  "hello",
	})
	w := doRequest(t, router, http.MethodGet, "/api/v1/forms/demo/state", "s1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello", data["detail"])
}

func TestPostSubmit(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/forms/demo/submit", "s1", map[string]any{
		"entries": []map[string]string{
			{"name": "general[show]", "value": "on"},
			{"name": "general[detail]", "value": "hi"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "submitted", body["status"])
	assert.NotEmpty(t, body["submissionId"])
}

func TestPostRepeatGrowsRepetition(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/forms/demo/repeat", "s1", map[string]any{
		"form_data": map[string]any{
			"general[rows][1][title]": "a",
			"general[rows][2][title]": "b",
		},
		"element-name": "general[rows]",
		"increment":    1,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "general[rows][3][title]")
}

func TestPostRepeatUnknownElementRejected(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/forms/demo/repeat", "s1", map[string]any{
		"form_data": map[string]any{
			"general[rows][1][title]": "a",
			"general[rows][2][title]": "b",
		},
		"element-name": "general[nope]",
		"increment":    1,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "general[nope]")
}

func TestDeleteRepetitionRefusedAtFloor(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodDelete, "/api/v1/forms/demo/repetitions", "s1", map[string]any{
		"element-name": "general[rows]",
		"index":        0,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["removed"])
}

func editorToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"password": "letmein"})
	require.Equal(t, http.StatusOK, w.Code)
	token, ok := decodeBody(t, w)["token"].(string)
	require.True(t, ok)
	return token
}

func TestLoginRejectsBadPassword(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthStatus(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/auth/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["authenticated"])

	token := editorToken(t, router)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, true, decodeBody(t, rec)["authenticated"])
}

func TestFormMutationRequiresEditorToken(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPut, "/api/v1/forms/extra", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := editorToken(t, router)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/forms/extra",
		strings.NewReader(`{"id": "extra", "general": [{"kind": "input", "name": "x"}]}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// The new form is now listed and servable.
	list := doRequest(t, router, http.MethodGet, "/api/v1/forms", "", nil)
	assert.Contains(t, list.Body.String(), "extra")
}

func TestPutFormRejectsInvalidDefinition(t *testing.T) {
	router := newTestRouter(t)
	token := editorToken(t, router)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/forms/bad",
		strings.NewReader(`{"id": "bad", "general": [{"kind": "slider", "name": "x"}]}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStateWebsocketStreamsEffects(t *testing.T) {
	router := newTestRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/state/ws"
	header := http.Header{}
	header.Set(middleware.SessionHeader, "s1")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	payload, err := json.Marshal(map[string]any{
		"formId":  "demo",
		"name":    "general[show]",
		"checked": true,
	})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/state", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, "s1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(frame), "general[detail]")
}
