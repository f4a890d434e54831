package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/sentencebot/internal/domain"
	"github.com/timmy/sentencebot/internal/service"
)

// MessageHandler receives inbound messages from the gateway.
type MessageHandler struct {
	bot     *service.Bot
	replier service.Replier
}

// MessageResponse reports what the bot did with a message.
type MessageResponse struct {
	Outcome service.Outcome `json:"outcome"`
	Error   string          `json:"error,omitempty"`
}

// NewMessageHandler creates a new message handler.
// Parameters:
//   - bot: reply pipeline.
//   - replier: delivers generated images back through the gateway.
// Returns:
//   - *MessageHandler: initialized handler.
func NewMessageHandler(bot *service.Bot, replier service.Replier) *MessageHandler {
	return &MessageHandler{
		bot:     bot,
		replier: replier,
	}
}

// Receive handles POST /api/v1/messages.
// A failed reply is still acknowledged with 200 so the gateway does not redeliver it.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MessageHandler) Receive(c *gin.Context) {
	var event domain.MessageEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	outcome, err := h.bot.HandleMessage(c.Request.Context(), event, h.replier)
	resp := MessageResponse{Outcome: outcome}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
