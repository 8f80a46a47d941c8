package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/masa1023/site-concierge/internal/server"
)

var scrapeIndex bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Scrape a page into the content store",
	Long: `Fetch a single page, extract its main text and replace the stored content.

Examples:
  # Scrape only
  site-concierge scrape https://example.com

  # Scrape and rebuild the index
  site-concierge scrape https://example.com --index`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().BoolVar(&scrapeIndex, "index", false, "rebuild the index after scraping")
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	return scrapeAndIndex(ctx, a.engine, args[0], scrapeIndex, cmd.OutOrStdout())
}

// scrapeAndIndex replaces the stored content with url and, when index is
// set, rebuilds the collection from it. A failed scrape skips indexing.
func scrapeAndIndex(ctx context.Context, ingester server.Ingester, url string, index bool, out io.Writer) error {
	fmt.Fprintf(out, "Scraping: %s\n", url)
	scraped, err := ingester.Scrape(ctx, url)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  Title: %s\n  Length: %d characters\n", scraped.Title, scraped.ContentLength)

	if !index {
		fmt.Fprintln(out, "Run 'site-concierge index' to index this content")
		return nil
	}

	fmt.Fprintf(out, "Indexing: %s (%d characters)\n", scraped.SourceURL, scraped.ContentLength)
	result, err := ingester.Index(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  Chunks: %d, Indexed: %d, Failed: %d, Duration: %v\n",
		result.ChunksCount, result.Inserted, result.Failed, result.Duration)
	return nil
}
