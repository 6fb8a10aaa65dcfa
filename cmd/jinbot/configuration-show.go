package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jinbot/jinbot/pkg/config"
)

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show jinbot configuration attributes and their sources",
	Long: `Show jinbot configuration attributes and their sources.

The values displayed reflect the current state of the configuration sources
(environment variables and the config file), not necessarily the values a
running server was started with. Secrets are redacted.

Config file location: /etc/jinbot/jinbot.yml (or JINBOT_CONFIG_PATH)

With --attribute only that attribute's value is printed.

Example:
  jinbot configuration show
  jinbot configuration show --output json
  jinbot configuration show --attribute store`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		attribute, _ := cmd.Flags().GetString("attribute")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if err := showConfiguration(os.Stdout, cfg, output, attribute); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	configurationShowCmd.Flags().StringP("attribute", "a", "", "Print a single attribute value")
}

func showConfiguration(w io.Writer, cfg *config.BotConfig, output, attribute string) error {
	if attribute != "" {
		attr, ok := cfg.Attribute(attribute)
		if !ok {
			return fmt.Errorf("unknown attribute %q", attribute)
		}
		if output == "json" {
			data, err := json.Marshal(attr)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(data))
			return nil
		}
		fmt.Fprintln(w, attr.Value)
		return nil
	}

	switch output {
	case "json":
		jsonOutput, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, jsonOutput)
	case "text":
		fmt.Fprint(w, cfg.FormatText())
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
	return nil
}
