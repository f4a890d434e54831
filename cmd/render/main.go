package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/timmy/sentencebot/internal/catalog"
	"github.com/timmy/sentencebot/internal/compose"
	"github.com/timmy/sentencebot/internal/config"
	"github.com/timmy/sentencebot/internal/domain"
	"github.com/timmy/sentencebot/internal/logger"
	"github.com/timmy/sentencebot/internal/quote"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "sentencebot-render",
	})
	logger.SetDefaultLogger(appLogger)

	text := flag.String("text", "", "Message to render, quotes included")
	background := flag.String("background", "", "Background file, a random one from the catalog when empty")
	output := flag.String("out", "quote.png", "Output PNG path")
	seed := flag.Uint64("seed", 0, "Random seed for background selection, 0 uses the clock")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	sentence, err := quote.Extract(*text)
	if err != nil {
		appLogger.WithField("text", *text).WithError(err).Fatal("Text is not a quoted sentence")
	}

	var entry domain.ImageEntry
	if *background != "" {
		title, format := catalog.ParseFileName(filepath.Base(*background))
		entry = domain.ImageEntry{Title: title, Format: format, Location: *background}
	} else {
		cat, err := catalog.Load(cfg.Bot.ImagesDir)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to load background catalog")
		}
		rng := catalog.NewTimeRandom()
		if *seed != 0 {
			rng = catalog.NewRandom(*seed)
		}
		entry, err = cat.Select(rng)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to select background")
		}
	}

	composer, err := compose.New(&compose.Config{
		FontPath:    cfg.Render.FontPath,
		FontSize:    cfg.Render.FontSize,
		Width:       cfg.Render.Width,
		Margin:      cfg.Render.Margin,
		JPEGQuality: cfg.Render.JPEGQuality,
		Shade:       cfg.Render.Shade,
	}, catalog.DirOpener{})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize composer")
	}
	defer composer.Close()

	author := quote.DeriveAuthor(entry)
	media, err := composer.Compose(context.Background(), domain.RenderSpec{
		Background: entry,
		Sentence:   sentence.String(),
		Author:     author,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to compose image")
	}

	data, err := media.Bytes()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to decode image payload")
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		appLogger.WithError(err).Fatal("Failed to write output")
	}

	appLogger.WithFields(logger.Fields{
		"background": entry.Location,
		"author":     author,
		"out":        *output,
		"size":       len(data),
	}).Info("Image rendered")
}
