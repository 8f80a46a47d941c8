package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/masa1023/site-concierge/internal/apiclient"
	"github.com/masa1023/site-concierge/internal/chat"
)

var (
	chatRemote bool
	chatAPIURL string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session",
	Long: `Chat with the assistant from the terminal. Type a question per line;
an empty line is ignored and "exit" or Ctrl-D ends the session.

With --remote the session talks to a running admin API the same way the
chat widget does (POST /api/search, then POST /api/generate).

Examples:
  site-concierge chat
  site-concierge chat --remote --api-url http://localhost:3001`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().BoolVar(&chatRemote, "remote", false, "use the admin API instead of local components")
	chatCmd.Flags().StringVar(&chatAPIURL, "api-url", "", "admin API base URL (default from chat.api_url)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	var responder chat.Responder
	if chatRemote {
		url := cfg.Chat.APIURL
		if chatAPIURL != "" {
			url = chatAPIURL
		}
		client := apiclient.New(apiclient.Config{BaseURL: url})
		responder = chat.NewAssistant(client, client, chatConfig(cfg))
	} else {
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		responder = a.assistant
	}

	return chatLoop(ctx, chat.NewConversation(responder), cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatLoop reads one question per line until EOF or "exit".
func chatLoop(ctx context.Context, conv *chat.Conversation, in io.Reader, out io.Writer) error {
	const name = "assistant"
	for _, msg := range conv.Messages() {
		fmt.Fprintf(out, "%s> %s\n", name, msg.Text)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		// Failures are logged by the conversation and answered with the apology.
		reply, _ := conv.Send(ctx, line)
		fmt.Fprintf(out, "%s> %s\n", name, reply.Text)

		if ctx.Err() != nil {
			return nil
		}
	}
}
