package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masa1023/site-concierge/internal/mcp"
	"github.com/masa1023/site-concierge/internal/vectorstore"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the MCP server for site retrieval.

The server communicates via stdio and provides two tools:
  - search_site: Search indexed chunks by query
  - ask_site: Answer a question from the site content

Example:
  site-concierge mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := mcp.NewServer(mcp.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
		Search: vectorstore.SearchOptions{
			Limit:    cfg.Chat.Limit,
			Distance: cfg.Chat.Distance,
		},
	}, a.retriever, a.assistant)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
