package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/sentencebot/internal/service"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	bot *service.Bot
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(bot *service.Bot) *HealthHandler {
	return &HealthHandler{bot: bot}
}

// Health returns the health status of the service.
// The bot is reported as starting until its authorization gate is built.
func (h *HealthHandler) Health(c *gin.Context) {
	gate := h.bot.Gate()
	if gate == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "starting",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"authorized":  gate.Len(),
		"backgrounds": h.bot.Backgrounds(),
	})
}
