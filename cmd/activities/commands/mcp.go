// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes the activity store to LLM agents via stdio
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/activities/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the activity store as an MCP (Model Context Protocol) server,
letting LLM agents add, list, update and delete activities via stdio.`,
		Args: cobra.NoArgs,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  activities mcp

  # Configure in the client's config file:
  # {
  #   "mcpServers": {
  #     "activities": {
  #       "command": "activities",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer(
		"Activities",
		currentVersion().Version,
		mcpserver.WithToolCapabilities(false),
	)

	mcp.RegisterTools(server, a.store, mcp.Options{
		UserID:          a.cfg.UserID,
		DefaultCurrency: a.cfg.DefaultCurrency,
		ListLimit:       a.cfg.ListLimit,
	})

	ctx := commandContext(cmd)
	a.logger.Info("MCP server starting on stdio", "db", a.store.DB.Path(), "user", a.cfg.UserID)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		if err := a.Close(); err != nil {
			a.logger.Warn("error closing storage", "err", err)
		}
		a.logger.Info("shutdown complete")

	case err := <-serverErr:
		_ = a.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
