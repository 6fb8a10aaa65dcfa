package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jinbot/jinbot/pkg/audit"
	"github.com/jinbot/jinbot/pkg/config"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
	Long: `Inspect audit records stored in AUDIT_DATABASE_URL (or the postgres store's
database when that is unset).`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'audit' requires a subcommand (list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit records",
	Long: `List recent audit records, newest first.

Example:
  jinbot audit list
  jinbot audit list --kind like --limit 50`,
	Run: func(cmd *cobra.Command, args []string) {
		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")

		if err := listAudit(kind, limit); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list audit records: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)
	auditListCmd.Flags().StringP("kind", "k", "", "Only show this event kind (like, meme-add, meme-send, interval, group)")
	auditListCmd.Flags().IntP("limit", "n", 20, "Maximum number of records")
}

func auditDatabaseURL() string {
	if u := os.Getenv("AUDIT_DATABASE_URL"); u != "" {
		return u
	}
	if cfg, err := config.Load(); err == nil && cfg.Store == config.StorePostgres {
		return cfg.DatabaseURL
	}
	return ""
}

func listAudit(kind string, limit int) error {
	dbURL := auditDatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("AUDIT_DATABASE_URL is not set")
	}

	store, err := audit.Open(dbURL)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	messages, err := store.Recent(kind, limit)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Println("No audit records")
		return nil
	}
	for _, m := range messages {
		fmt.Println(m)
	}
	return nil
}
