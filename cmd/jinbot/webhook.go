package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jinbot/jinbot/pkg/telegram"
)

// webhookCmd represents the webhook command
var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Telegram webhook",
	Long:  `Register, remove or inspect the webhook Telegram delivers updates to.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'webhook' requires a subcommand (set, delete, info)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var webhookSetCmd = &cobra.Command{
	Use:   "set [url]",
	Short: "Register the webhook",
	Long: `Register the webhook with Telegram. Without an argument the URL is
built from WEBHOOK_BASE and the bot token.

Example:
  jinbot webhook set
  jinbot webhook set https://bot.example.com/webhook/<token>`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := webhookClient()

		url := ""
		if len(args) > 0 {
			url = args[0]
		} else if cfg, err := loadConfig(); err == nil {
			url = cfg.WebhookURL()
		}
		if url == "" {
			fmt.Fprintln(os.Stderr, "Webhook URL not set!")
			os.Exit(1)
		}

		if err := client.SetWebhook(url); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set webhook: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Webhook set")
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the webhook",
	Long:  `Remove the webhook so updates can be fetched by polling.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := webhookClient().DeleteWebhook(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to delete webhook: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Webhook deleted")
	},
}

var webhookInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the registered webhook",
	Run: func(cmd *cobra.Command, args []string) {
		url, pending, err := webhookClient().WebhookInfo()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get webhook info: %v\n", err)
			os.Exit(1)
		}
		if url == "" {
			url = "(none)"
		}
		fmt.Printf("URL: %s\n", url)
		fmt.Printf("Pending updates: %d\n", pending)
	},
}

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.AddCommand(webhookSetCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
	webhookCmd.AddCommand(webhookInfoCmd)
}

func webhookClient() *telegram.Client {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	client, err := telegram.New(cfg.TelegramToken, log.Logger, telegram.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return client
}
