package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/masa1023/site-concierge/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "site-concierge",
	Short: "Site Concierge: a website knowledge base chatbot",
	Long: `Site Concierge scrapes a website's text, chunks it, indexes the chunks in a
vector store and answers visitor questions from the retrieved chunks.

Commands:
  serve   Start the admin API used by the chat widget
  scrape  Scrape a page into the content store
  index   Rebuild the vector collection from the scraped content
  search  Search the indexed chunks
  ask     Answer a single question
  chat    Interactive chat session
  mcp     Start the MCP server over stdio
  config  Manage the configuration file`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// .env.local then .env; real environment variables always win
	if err := config.LoadDotEnv("."); err != nil {
		slog.Warn("dotenv error", "error", err)
	}

	loaded, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		slog.Warn("config error, using defaults", "error", err)
		loaded = config.Defaults()
	}
	cfg = loaded
}
