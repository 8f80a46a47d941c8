package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var askSources bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question from the site content",
	Long: `Retrieve the chunks relevant to a question and generate an answer from them.

Example:
  site-concierge ask "When are you open on Saturdays?" --sources`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVar(&askSources, "sources", false, "print the chunks the answer was based on")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	reply, err := a.assistant.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Println(reply.Answer)
	if askSources {
		fmt.Printf("\nSources (%d):\n", len(reply.Sources))
		for _, s := range reply.Sources {
			fmt.Printf("  [%d] %s\n", s.ChunkIndex, preview(s.Text, 100))
		}
	}
	return nil
}
