package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jinbot/jinbot/pkg/config"
	"github.com/jinbot/jinbot/pkg/server/middleware"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage control endpoint tokens",
	Long: `Manage bearer tokens for the protected HTTP endpoints (/send_meme).

Tokens are HS256 JWTs signed with JINBOT_CONTROL_SECRET.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'token' requires a subcommand (issue)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a bearer token",
	Long: `Issue a bearer token for the protected HTTP endpoints.

Example:
  jinbot token issue --subject cron
  jinbot token issue --subject cron --ttl 720h`,
	Run: func(cmd *cobra.Command, args []string) {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if cfg.ControlSecret == "" {
			fmt.Fprintln(os.Stderr, "JINBOT_CONTROL_SECRET is not set")
			os.Exit(1)
		}

		token, err := middleware.IssueToken([]byte(cfg.ControlSecret), subject, ttl, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenIssueCmd.Flags().StringP("subject", "s", "admin", "Token subject")
	tokenIssueCmd.Flags().Duration("ttl", 0, "Token lifetime (0 means no expiry)")
}
