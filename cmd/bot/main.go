package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/sentencebot/internal/api"
	"github.com/timmy/sentencebot/internal/catalog"
	"github.com/timmy/sentencebot/internal/compose"
	"github.com/timmy/sentencebot/internal/config"
	"github.com/timmy/sentencebot/internal/gateway"
	"github.com/timmy/sentencebot/internal/logger"
	"github.com/timmy/sentencebot/internal/repository"
	"github.com/timmy/sentencebot/internal/service"
	"github.com/timmy/sentencebot/internal/storage"
)

func main() {
	appLogger := logger.NewFromEnv(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid config")
	}

	ctx := context.Background()

	// Backgrounds come from a local directory or an S3-compatible bucket
	var (
		cat    *catalog.Catalog
		opener catalog.Opener
	)
	switch cfg.Bot.ImagesSource {
	case "storage":
		objectStorage, err := storage.NewStorage(&storage.S3Config{
			Type:      storage.StorageType(cfg.Storage.Type),
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
		cat, err = catalog.LoadFromStorage(ctx, objectStorage, cfg.Bot.ImagesPrefix)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to load background catalog")
		}
		opener = catalog.StorageOpener{Store: objectStorage}
	default:
		cat, err = catalog.Load(cfg.Bot.ImagesDir)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to load background catalog")
		}
		opener = catalog.DirOpener{}
	}
	appLogger.WithFields(logger.Fields{
		"source":          cat.Source(),
		logger.FieldCount: cat.Len(),
	}).Info("Background catalog loaded")

	composer, err := compose.New(&compose.Config{
		FontPath:    cfg.Render.FontPath,
		FontSize:    cfg.Render.FontSize,
		Width:       cfg.Render.Width,
		Margin:      cfg.Render.Margin,
		JPEGQuality: cfg.Render.JPEGQuality,
		Shade:       cfg.Render.Shade,
	}, opener)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize composer")
	}
	defer composer.Close()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	defer repository.Close(db)
	replyRepo := repository.NewReplyRepository(db)

	gatewayClient, err := gateway.NewClient(&gateway.Config{
		BaseURL:    cfg.Gateway.BaseURL,
		APIKey:     cfg.Gateway.APIKey,
		Timeout:    cfg.Gateway.Timeout,
		RetryCount: cfg.Gateway.RetryCount,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize gateway client")
	}

	rng := catalog.NewTimeRandom()
	if cfg.Bot.RandomSeed != 0 {
		rng = catalog.NewRandom(cfg.Bot.RandomSeed)
	}

	bot := service.NewBot(
		&service.BotConfig{AllowedContacts: cfg.Bot.AllowedContacts},
		cat,
		rng,
		composer,
		replyRepo,
		appLogger,
	)

	if len(cfg.Bot.AllowedContacts) == 0 {
		appLogger.Warn("No allowed contacts configured, every quote will be ignored")
	}
	if err := bot.Start(ctx, gatewayClient); err != nil {
		appLogger.WithError(err).Fatal("Failed to build authorization gate")
	}

	router := api.SetupRouter(bot, gatewayClient, replyRepo, appLogger, api.RouterConfig{
		Mode:          cfg.Server.Mode,
		WebhookSecret: cfg.Gateway.WebhookSecret,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting webhook server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
