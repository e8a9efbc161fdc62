package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nDmitry/spacetravelling/internal/api/rest"
	"github.com/nDmitry/spacetravelling/internal/app"
	"github.com/nDmitry/spacetravelling/internal/cache"
	"github.com/nDmitry/spacetravelling/internal/config"
	"github.com/nDmitry/spacetravelling/internal/feed"
	"github.com/nDmitry/spacetravelling/internal/prismic"
	"github.com/nDmitry/spacetravelling/internal/render"
)

func main() {
	logger := app.Logger()
	slog.SetDefault(logger)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Received first shutdown signal, starting graceful shutdown...")
		cancel()

		// If we receive a second signal, exit immediately
		<-sigChan
		logger.Info("Received second shutdown signal, exiting immediately...")
		os.Exit(1)
	}()

	cfg, err := config.FromEnv()

	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr)

	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	defer redisClient.Close()

	renderer, err := render.New(cfg.SiteTitle)

	if err != nil {
		logger.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	content := prismic.NewClient(cfg.APIEndpoint, cfg.APIAccessToken)
	generator := &feed.Generator{Site: feed.SiteInfo{Title: cfg.SiteTitle, URL: cfg.SiteURL}}

	server := rest.NewServer(redisClient, content, renderer, generator, cfg.PageSize, cfg.Port)

	logger.Info("Serving posts",
		"endpoint", cfg.APIEndpoint,
		"page_size", cfg.PageSize,
		"site_url", cfg.SiteURL)

	if err := server.Run(ctx); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exited gracefully")
}
