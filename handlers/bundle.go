package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle collects the HTTP handlers the router wires up.
type HandlerBundle struct {
	ChatHandler        gin.HandlerFunc
	VoiceChatHandler   gin.HandlerFunc
	AgentStatusHandler gin.HandlerFunc
	ResetAgentHandler  gin.HandlerFunc
}
