package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/masa1023/site-concierge/internal/config"
)

var (
	configPath  string
	configForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
		if err := config.Save(config.Defaults(), configPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", configPath)
		fmt.Printf("Set %s in the environment or in .env.local before indexing.\n", config.EnvGoogleAPIKey)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := GetConfig()
		for _, secret := range []*string{
			&shown.Google.APIKey,
			&shown.VectorStore.Elasticsearch.Password,
			&shown.VectorStore.Elasticsearch.APIKey,
			&shown.Content.S3.SecretAccessKey,
		} {
			if *secret != "" {
				*secret = "********"
			}
		}
		out, err := yaml.Marshal(shown)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().StringVar(&configPath, "path", "config/config.yaml", "where to write the file")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
}
