package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/sentencebot/internal/api/handler"
	"github.com/timmy/sentencebot/internal/api/middleware"
	"github.com/timmy/sentencebot/internal/logger"
	"github.com/timmy/sentencebot/internal/service"
)

// Gateway is the messaging collaborator: it lists contacts and delivers replies.
type Gateway interface {
	service.ContactSource
	service.Replier
}

// RouterConfig holds router settings
type RouterConfig struct {
	Mode          string
	WebhookSecret string
}

// SetupRouter configures the Gin router with all routes.
// history may be nil when the reply history is disabled.
func SetupRouter(
	bot *service.Bot,
	gateway Gateway,
	history handler.HistoryReader,
	log *logger.Logger,
	cfg RouterConfig,
) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))

	healthHandler := handler.NewHealthHandler(bot)
	messageHandler := handler.NewMessageHandler(bot, gateway)
	adminHandler := handler.NewAdminHandler(bot, gateway, history)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.WebhookSecret(cfg.WebhookSecret))
	{
		v1.POST("/messages", messageHandler.Receive)

		v1.POST("/contacts/refresh", adminHandler.RefreshContacts)

		v1.GET("/stats", adminHandler.GetStats)
		v1.GET("/replies", adminHandler.ListReplies)
	}

	return r
}
