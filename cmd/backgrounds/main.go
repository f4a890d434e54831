package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/sentencebot/internal/catalog"
	"github.com/timmy/sentencebot/internal/config"
	"github.com/timmy/sentencebot/internal/logger"
	"github.com/timmy/sentencebot/internal/service"
	"github.com/timmy/sentencebot/internal/storage"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "sentencebot-backgrounds",
	})
	logger.SetDefaultLogger(appLogger)

	dir := flag.String("dir", "", "Local background directory, defaults to bot.images_dir")
	prefix := flag.String("prefix", "", "Object key prefix, defaults to bot.images_prefix")
	workers := flag.Int("workers", 4, "Number of parallel uploads")
	force := flag.Bool("force", false, "Overwrite objects that already exist")
	dryRun := flag.Bool("dry-run", false, "Validate backgrounds without uploading")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if *dir == "" {
		*dir = cfg.Bot.ImagesDir
	}
	if *prefix == "" {
		*prefix = cfg.Bot.ImagesPrefix
	}

	cat, err := catalog.Load(*dir)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load background catalog")
	}

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	syncService := service.NewSyncService(objectStorage, appLogger, &service.SyncConfig{Workers: *workers})
	stats, err := syncService.Sync(ctx, cat, &service.SyncOptions{
		Prefix: *prefix,
		Force:  *force,
		DryRun: *dryRun,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to sync backgrounds")
	}
	if stats.FailedItems > 0 {
		appLogger.WithField("failed", stats.FailedItems).Fatal("Some backgrounds were not uploaded")
	}
}
