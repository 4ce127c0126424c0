package models

// ChatMessage is a single turn in the client-supplied conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload coming from the frontend into /api/chat.
type ChatRequest struct {
	SessionID string        `json:"session_id"`
	Message   string        `json:"message" binding:"required"`
	History   []ChatMessage `json:"history"`
}

// ChatResponse is what the chat handler returns to the frontend.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// ConversationStateStatus mirrors the session flags for the status probe.
type ConversationStateStatus struct {
	HasPendingBooking      bool `json:"has_pending_booking"`
	WaitingForConfirmation bool `json:"waiting_for_confirmation"`
	WaitingForTitle        bool `json:"waiting_for_title"`
}

// AgentStatusResponse is returned by /api/agent-status.
type AgentStatusResponse struct {
	AgentReady        bool                    `json:"agent_ready"`
	ConversationState ConversationStateStatus `json:"conversation_state"`
	CurrentDate       string                  `json:"current_date"`
}
