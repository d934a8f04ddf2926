package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dakotahome/services/agent"
	"dakotahome/services/conversation"
	"dakotahome/utils"
)

// ChatHandler serves the conversational surface.
type ChatHandler struct {
	Agent  *agent.Service // nil when no model provider is configured
	Logger *zap.Logger
}

func NewChatHandler(svc *agent.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Agent: svc, Logger: logger}
}

// HandleChat processes one user turn. An absent thread_id starts a new
// conversation.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var input struct {
		ThreadID string `json:"thread_id"`
		Message  string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if h.Agent == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "agent not configured",
			"no model provider API key is set")
		return
	}

	result, err := h.Agent.HandleTurn(c.Request.Context(), input.ThreadID, input.Message)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "thread not found", input.ThreadID)
			return
		}
		h.Logger.Error("chat turn failed", zap.String("thread_id", input.ThreadID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("chat turn failed: %v", err)})
		return
	}

	c.JSON(http.StatusOK, result)
}
