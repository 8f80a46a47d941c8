package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/masa1023/site-concierge/internal/server"
	"github.com/masa1023/site-concierge/internal/vectorstore"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin API",
	Long: `Start the JSON admin API used by the admin page and the chat widget.

Routes:
  POST /api/scrape     scrape a URL into the content store
  POST /api/index      rebuild the vector collection
  GET  /api/status     scraped content status
  GET  /api/health     credential check
  POST /api/search     similarity search
  POST /api/generate   text generation
  POST /api/chat       retrieve, assemble and generate in one call

Example:
  site-concierge serve --addr :3001`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if missing := cfg.Missing(); len(missing) > 0 {
		slog.Warn("missing environment variables, indexing and chat will not work", "missing", missing)
	}

	srv := server.New(server.Deps{
		Ingester:    a.engine,
		Content:     a.content,
		Searcher:    a.retriever,
		Generator:   a.generator,
		Assistant:   a.assistant,
		Credentials: cfg.Credentials,
	}, server.Config{
		Addr: addr,
		Search: vectorstore.SearchOptions{
			Limit:    cfg.Chat.Limit,
			Distance: cfg.Chat.Distance,
		},
		Generation: chatConfig(cfg).Generation,
	})

	fmt.Fprintf(cmd.ErrOrStderr(), "Admin server running at http://localhost%s (%s)\n", addr, cfg.Server.Environment)
	return srv.ListenAndServe(ctx)
}
