package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jinbot/jinbot/pkg/bot"
	"github.com/jinbot/jinbot/pkg/config"
	"github.com/jinbot/jinbot/pkg/likes"
	"github.com/jinbot/jinbot/pkg/meme"
	"github.com/jinbot/jinbot/pkg/metrics"
	"github.com/jinbot/jinbot/pkg/server"
	"github.com/jinbot/jinbot/pkg/server/endpoints"
	"github.com/jinbot/jinbot/pkg/telegram"
)

const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the bot and its HTTP server",
	Long: `Run the bot and its HTTP server.

Requires TELEGRAM_TOKEN. In webhook mode (the default) WEBHOOK_BASE must be the
public URL Telegram can reach; the webhook is registered on startup.

With the postgres store, database migrations are run on startup. Use
--no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind-address") {
			cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if cfg.Store == config.StorePostgres && !noMigrate {
			log.Info().Msg("Running database migrations...")
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		if err := runServer(cfg, log.Logger); err != nil {
			log.Error().Err(err).Msg("Server failed")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().IntP("port", "p", defaultPort(), "server listen port (overrides PORT)")
	serverCmd.Flags().StringP("bind-address", "b", "0.0.0.0", "server bind address (overrides BIND_ADDRESS)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(cfg *config.BotConfig, logger zerolog.Logger) error {
	st, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close store")
		}
	}()

	library, err := meme.NewLibrary(cfg.MemeDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open meme directory: %w", err)
	}

	tracker := likes.NewTracker(st, logger)
	if err := tracker.Load(); err != nil {
		logger.Warn().Err(err).Msg("Failed to load likes; starting with none")
	}

	client, err := telegram.New(cfg.TelegramToken, logger, telegram.Options{})
	if err != nil {
		return err
	}

	collector := metrics.NewCollector(logger)
	b := bot.New(client, library, tracker, st, logger, bot.Options{
		Username:    client.Username(),
		Interval:    cfg.PostInterval(),
		RandomOrder: cfg.RandomOrder,
		Metrics:     collector,
	})

	s := server.NewServer(cfg, b, client, st, collector, logger)
	endpoints.RegisterAll(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := library.Watch(ctx); err != nil {
			logger.Warn().Err(err).Msg("Meme directory watch stopped")
		}
	}()

	switch cfg.UpdateMode {
	case config.ModePolling:
		if err := client.DeleteWebhook(); err != nil {
			logger.Warn().Err(err).Msg("Failed to delete webhook")
		}
		go client.PollUpdates(ctx, b.HandleUpdate)
	default:
		registerWebhook(cfg, client, logger)
	}

	b.Start()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down")
	case err = <-errCh:
	}

	b.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := s.Shutdown(shutdownCtx); serr != nil && !errors.Is(serr, context.DeadlineExceeded) {
		logger.Warn().Err(serr).Msg("Server shutdown failed")
	}
	return err
}

// registerWebhook replaces any existing webhook with the configured one.
// The URL carries the bot token, so only the base is logged.
func registerWebhook(cfg *config.BotConfig, client *telegram.Client, logger zerolog.Logger) {
	url := cfg.WebhookURL()
	if url == "" {
		logger.Error().Msg("Webhook URL not set!")
		return
	}
	if err := client.DeleteWebhook(); err != nil {
		logger.Warn().Err(err).Msg("Failed to delete webhook")
	}
	if err := client.SetWebhook(url); err != nil {
		logger.Error().Err(err).Str("webhook_base", cfg.WebhookBase).Msg("Failed to set webhook")
		return
	}
	logger.Info().Str("webhook_base", cfg.WebhookBase).Msg("Webhook set")
}
