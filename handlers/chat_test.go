package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookwise/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAgent struct {
	reply      string
	status     models.ConversationStateStatus
	resetErr   error
	lastInput  string
	sessionIDs []string
}

func (s *stubAgent) Respond(_ context.Context, sessionID, message string, _ []models.ChatMessage) string {
	s.sessionIDs = append(s.sessionIDs, sessionID)
	s.lastInput = message
	return s.reply
}

func (s *stubAgent) Status(_ context.Context, sessionID string) models.ConversationStateStatus {
	return s.status
}

func (s *stubAgent) Reset(_ context.Context, sessionID string) error {
	return s.resetErr
}

func newTestRouter(agentStub *stubAgent) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(agentStub)
	r := gin.New()
	r.POST("/api/chat", h.HandleChat)
	r.GET("/api/agent-status", h.HandleAgentStatus)
	r.POST("/api/reset-agent", h.HandleResetAgent)
	return r
}

func TestHandleChat(t *testing.T) {
	agentStub := &stubAgent{reply: "Great! The time slot is available."}
	router := newTestRouter(agentStub)

	body, _ := json.Marshal(models.ChatRequest{
		SessionID: "abc",
		Message:   "Book an appointment on July 8th at 5 PM",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "abc", resp.SessionID)
	assert.Equal(t, "Great! The time slot is available.", resp.Response)
	assert.Equal(t, "Book an appointment on July 8th at 5 PM", agentStub.lastInput)
}

func TestHandleChatMintsSessionID(t *testing.T) {
	agentStub := &stubAgent{reply: "ok"}
	router := newTestRouter(agentStub)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte(`{"message":"hello"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	require.Len(t, agentStub.sessionIDs, 1)
	assert.Equal(t, agentStub.sessionIDs[0], resp.SessionID)
}

func TestHandleChatPrefersHeaderSession(t *testing.T) {
	agentStub := &stubAgent{reply: "ok"}
	router := newTestRouter(agentStub)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte(`{"message":"hello"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", "header-session")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, agentStub.sessionIDs, 1)
	assert.Equal(t, "header-session", agentStub.sessionIDs[0])
}

func TestHandleChatRejectsMissingMessage(t *testing.T) {
	router := newTestRouter(&stubAgent{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAgentStatus(t *testing.T) {
	agentStub := &stubAgent{status: models.ConversationStateStatus{
		HasPendingBooking: true,
		WaitingForTitle:   true,
	}}
	router := newTestRouter(agentStub)

	req := httptest.NewRequest(http.MethodGet, "/api/agent-status?session_id=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.AgentStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.AgentReady)
	assert.True(t, resp.ConversationState.HasPendingBooking)
	assert.True(t, resp.ConversationState.WaitingForTitle)
	assert.False(t, resp.ConversationState.WaitingForConfirmation)
	assert.NotEmpty(t, resp.CurrentDate)
}

func TestHandleResetAgent(t *testing.T) {
	router := newTestRouter(&stubAgent{})

	req := httptest.NewRequest(http.MethodPost, "/api/reset-agent", bytes.NewReader([]byte(`{"session_id":"abc"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reset successfully")
}
