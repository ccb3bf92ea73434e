package ragno

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ragno-ai/ragno/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the fully resolved configuration as YAML, after defaults, config
file values, and environment overrides have been applied. Useful for checking
what the server or search command would actually run with.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Credentials stay out of terminal output.
	cfg.Store.Password = redact(cfg.Store.Password)
	cfg.Embedding.APIKey = redact(cfg.Embedding.APIKey)
	cfg.Extraction.APIKey = redact(cfg.Extraction.APIKey)

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
