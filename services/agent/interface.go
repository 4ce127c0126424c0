package agent

import (
	"context"

	"bookwise/models"
)

// AgentService drives the booking negotiation for chat sessions. Respond never
// returns an error: every failure path collapses into a displayable reply, so
// the assistant always speaks.
type AgentService interface {
	Respond(ctx context.Context, sessionID, message string, history []models.ChatMessage) string
	Status(ctx context.Context, sessionID string) models.ConversationStateStatus
	Reset(ctx context.Context, sessionID string) error
}
