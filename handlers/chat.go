package handlers

import (
	"net/http"
	"time"

	"bookwise/models"
	"bookwise/services/agent"
	"bookwise/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatHandler exposes the booking agent over HTTP.
type ChatHandler struct {
	Agent agent.AgentService
}

func NewChatHandler(agentSvc agent.AgentService) *ChatHandler {
	return &ChatHandler{Agent: agentSvc}
}

// HandleChat processes one chat turn. A missing session ID starts a new session;
// the ID is echoed back so the client can continue it.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	sessionID := resolveSessionID(c, req.SessionID)
	reply := h.Agent.Respond(c.Request.Context(), sessionID, req.Message, req.History)

	c.JSON(http.StatusOK, models.ChatResponse{
		SessionID: sessionID,
		Response:  reply,
	})
}

// HandleAgentStatus reports whether a booking is pending for a session and which
// negotiation flags are set.
func (h *ChatHandler) HandleAgentStatus(c *gin.Context) {
	sessionID := resolveSessionID(c, c.Query("session_id"))

	c.JSON(http.StatusOK, models.AgentStatusResponse{
		AgentReady:        true,
		ConversationState: h.Agent.Status(c.Request.Context(), sessionID),
		CurrentDate:       time.Now().Format("Monday, 2006-01-02 15:04:05"),
	})
}

// HandleResetAgent unconditionally clears a session's conversation state.
func (h *ChatHandler) HandleResetAgent(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	// Body is optional; the session may also come from the header.
	_ = c.ShouldBindJSON(&req)

	sessionID := resolveSessionID(c, req.SessionID)
	if err := h.Agent.Reset(c.Request.Context(), sessionID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to reset agent state", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Agent state reset successfully"})
}

// resolveSessionID prefers the explicit value, then the X-Session-ID header, and
// finally mints a fresh ID.
func resolveSessionID(c *gin.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if header := c.GetHeader("X-Session-ID"); header != "" {
		return header
	}
	return uuid.New().String()
}
