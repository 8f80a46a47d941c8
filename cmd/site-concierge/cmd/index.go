package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	indexVerify bool
	verifyCount int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the vector collection from the scraped content",
	Long: `Chunk the stored content, drop and recreate the collection, and insert every
chunk. The replace is not atomic: searches during a rebuild may fail.

Examples:
  site-concierge index
  site-concierge index --verify`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().BoolVar(&indexVerify, "verify", false, "print a sample of the stored chunks afterwards")
	indexCmd.Flags().IntVar(&verifyCount, "sample", 3, "number of chunks to print with --verify")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.engine.Index(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Created %d chunks\n", result.ChunksCount)
	fmt.Printf("Indexed: %d, Failed: %d, Duration: %v\n", result.Inserted, result.Failed, result.Duration)

	if !indexVerify {
		return nil
	}

	sample, err := a.engine.Verify(ctx, verifyCount)
	if err != nil {
		return err
	}
	fmt.Printf("\nSample of stored chunks (%d):\n", len(sample))
	for _, r := range sample {
		fmt.Printf("  [%d] %s\n", r.ChunkIndex, preview(r.Text, 100))
	}
	return nil
}

// preview shortens text to at most n characters for display.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
