package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/masa1023/site-concierge/internal/vectorstore"
)

var (
	searchLimit    int
	searchDistance float64
	searchFormat   string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed chunks",
	Long: `Search the indexed site content by similarity.

Examples:
  # Basic search
  site-concierge search "opening hours"

  # More results, looser match
  site-concierge search "delivery" --limit 5 --distance 0.9

  # JSON output for scripting
  site-concierge search "menu" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", vectorstore.DefaultLimit, "Maximum number of results")
	searchCmd.Flags().Float64Var(&searchDistance, "distance", vectorstore.DefaultDistance, "Maximum cosine distance")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.retriever.Search(ctx, args[0], vectorstore.SearchOptions{
		Limit:    searchLimit,
		Distance: searchDistance,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchFormat == "json" {
		output, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("─── Result %d (chunk %d) ───\n", i+1, r.ChunkIndex)
		fmt.Printf("%s\n\n", preview(r.Text, 500))
	}
	return nil
}
