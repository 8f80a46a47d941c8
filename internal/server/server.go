// Package server exposes the admin and query operations as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/masa1023/site-concierge/internal/chat"
	"github.com/masa1023/site-concierge/internal/config"
	"github.com/masa1023/site-concierge/internal/events"
	"github.com/masa1023/site-concierge/internal/llm"
	"github.com/masa1023/site-concierge/internal/storage"
	"github.com/masa1023/site-concierge/internal/vectorstore"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":3001"

// Ingester runs the admin operations.
type Ingester interface {
	Scrape(ctx context.Context, url string) (*events.ScrapeCompleteEvent, error)
	Index(ctx context.Context) (*events.IndexCompleteEvent, error)
}

// Asker answers a question end to end.
type Asker interface {
	Ask(ctx context.Context, question string) (*chat.Reply, error)
}

// Deps are the components behind the routes.
type Deps struct {
	Ingester    Ingester
	Content     storage.ContentStore
	Searcher    chat.Searcher
	Generator   llm.Generator
	Assistant   Asker
	Credentials func() []config.Credential
}

// Config holds HTTP server configuration.
type Config struct {
	Addr       string
	Search     vectorstore.SearchOptions // values for fields omitted from /api/search
	Generation llm.Options               // values for fields omitted from /api/generate
}

// Server serves the API.
type Server struct {
	deps    Deps
	config  Config
	handler http.Handler
}

// New creates a Server and registers its routes.
func New(deps Deps, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Search == (vectorstore.SearchOptions{}) {
		cfg.Search = vectorstore.DefaultSearchOptions()
	}
	if cfg.Search.Limit <= 0 {
		cfg.Search.Limit = vectorstore.DefaultLimit
	}
	if cfg.Generation == (llm.Options{}) {
		cfg.Generation = llm.DefaultOptions()
	}
	if deps.Credentials == nil {
		deps.Credentials = func() []config.Credential { return nil }
	}

	s := &Server{deps: deps, config: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scrape", s.handleScrape)
	mux.HandleFunc("POST /api/index", s.handleIndex)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("/", s.handleNotFound)

	s.handler = requestID(logRequests(cors(recoverPanics(mux))))
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	slog.Info("admin server listening", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
