// Package mcp exposes site search and question answering as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/masa1023/site-concierge/internal/chat"
	"github.com/masa1023/site-concierge/internal/vectorstore"
	"github.com/masa1023/site-concierge/pkg/models"
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	Search  vectorstore.SearchOptions // defaults for search_site
}

// Asker answers a question from the site content.
type Asker interface {
	Ask(ctx context.Context, question string) (*chat.Reply, error)
}

// Server wraps the MCP server with the site tools.
type Server struct {
	mcpServer *server.MCPServer
	searcher  chat.Searcher
	asker     Asker
	search    vectorstore.SearchOptions
}

type askResult struct {
	Answer  string                `json:"answer"`
	Sources []models.SearchResult `json:"sources"`
}

// NewServer creates a new MCP server with the site tools.
func NewServer(config Config, searcher chat.Searcher, asker Asker) (*Server, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if asker == nil {
		return nil, fmt.Errorf("asker is required")
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		searcher:  searcher,
		asker:     asker,
		search:    config.Search,
	}

	// Register search_site tool
	searchTool := mcp.NewTool("search_site",
		mcp.WithDescription("Search the indexed website content. Returns the most similar text chunks with their position in the page."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of chunks to return (default: 3)"),
		),
		mcp.WithNumber("distance",
			mcp.Description("Maximum cosine distance of a match (default: 0.7)"),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	// Register ask_site tool
	askTool := mcp.NewTool("ask_site",
		mcp.WithDescription("Answer a question using only the indexed website content."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Visitor question"),
		),
	)
	mcpServer.AddTool(askTool, s.askHandler)

	return s, nil
}

// searchHandler handles the search_site tool call.
func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	opts := vectorstore.SearchOptions{
		Limit:    req.GetInt("limit", s.search.Limit),
		Distance: req.GetFloat("distance", s.search.Distance),
	}

	results, err := s.searcher.Search(ctx, query, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	out, err := json.Marshal(results)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(out)), nil
}

// askHandler handles the ask_site tool call.
func (s *Server) askHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil || question == "" {
		return mcp.NewToolResultError("question parameter is required"), nil
	}

	reply, err := s.asker.Ask(ctx, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	sources := reply.Sources
	if sources == nil {
		sources = []models.SearchResult{}
	}
	out, err := json.Marshal(askResult{Answer: reply.Answer, Sources: sources})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal answer: %v", err)), nil
	}

	return mcp.NewToolResultText(string(out)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
