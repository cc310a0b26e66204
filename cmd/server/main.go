// ABOUTME: Standalone MCP server for the activity store over stdio
// ABOUTME: Same tools as `activities mcp`, for clients that want a dedicated binary
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/activities/internal/config"
	"github.com/harper/activities/internal/logging"
	"github.com/harper/activities/internal/mcp"
	"github.com/harper/activities/internal/storage"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	// stdout carries the protocol, so logs go to stderr
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "error").Fatal("failed to load config", "err", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "err", err)
	}
	defer func() { _ = store.Close() }()

	server := mcpserver.NewMCPServer(
		"Activities",
		version,
		mcpserver.WithToolCapabilities(false),
	)

	mcp.RegisterTools(server, store, mcp.Options{
		UserID:          cfg.UserID,
		DefaultCurrency: cfg.DefaultCurrency,
		ListLimit:       cfg.ListLimit,
	})

	logger.Info("activities MCP server starting on stdio", "db", store.DB.Path())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", "err", err)
			_ = store.Close()
			os.Exit(1)
		}
	}
}
