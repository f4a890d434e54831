package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/sentencebot/internal/domain"
	"github.com/timmy/sentencebot/internal/logger"
	"github.com/timmy/sentencebot/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// HistoryReader reads the reply history.
type HistoryReader interface {
	Stats(ctx context.Context) (*domain.ReplyStats, error)
	ListRecent(ctx context.Context, limit, offset int) ([]domain.ReplyRecord, error)
}

// AdminHandler handles operator endpoints.
type AdminHandler struct {
	bot      *service.Bot
	contacts service.ContactSource
	history  HistoryReader
}

// NewAdminHandler creates a new admin handler.
// Parameters:
//   - bot: bot whose gate is rebuilt on refresh.
//   - contacts: session contact source.
//   - history: reply history, nil when disabled.
// Returns:
//   - *AdminHandler: initialized handler.
func NewAdminHandler(bot *service.Bot, contacts service.ContactSource, history HistoryReader) *AdminHandler {
	return &AdminHandler{
		bot:      bot,
		contacts: contacts,
		history:  history,
	}
}

// RefreshContacts handles POST /api/v1/contacts/refresh.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AdminHandler) RefreshContacts(c *gin.Context) {
	if err := h.bot.Refresh(c.Request.Context(), h.contacts); err != nil {
		logger.FromContext(c.Request.Context()).WithError(err).Error("Failed to refresh contacts")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to refresh contacts: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorized": h.bot.Gate().Contacts(),
	})
}

// GetStats handles GET /api/v1/stats.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AdminHandler) GetStats(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "reply history disabled",
		})
		return
	}

	stats, err := h.history.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get stats: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListReplies handles GET /api/v1/replies.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AdminHandler) ListReplies(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "reply history disabled",
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.history.ListRecent(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list replies: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"replies": records,
		"limit":   limit,
		"offset":  offset,
	})
}
