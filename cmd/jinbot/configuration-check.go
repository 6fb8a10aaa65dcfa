package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jinbot/jinbot/pkg/config"
)

// configurationCheckCmd represents the configuration check command
var configurationCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the jinbot configuration",
	Long: `Load the configuration file and environment and validate the result.

Example:
  jinbot configuration check`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkConfiguration(); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration is invalid: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationCheckCmd)
}

func checkConfiguration() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if path := cfg.ConfigFilePath(); path != "" {
		fmt.Printf("Config file: %s\n", path)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.UpdateMode == config.ModeWebhook && cfg.WebhookBase == "" {
		fmt.Println("Warning: WEBHOOK_BASE is not set; the webhook will not be registered")
	}

	fmt.Println("Configuration is valid.")
	return nil
}
