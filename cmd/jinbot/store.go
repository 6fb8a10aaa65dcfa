package main

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jinbot/jinbot/pkg/config"
	"github.com/jinbot/jinbot/pkg/db"
	"github.com/jinbot/jinbot/pkg/server/store"
	boltstore "github.com/jinbot/jinbot/pkg/server/store/bolt"
	filestore "github.com/jinbot/jinbot/pkg/server/store/file"
	gormstore "github.com/jinbot/jinbot/pkg/server/store/gorm"
)

// openStore opens the state backend selected by cfg.Store
func openStore(cfg *config.BotConfig, logger zerolog.Logger) (store.StateStore, error) {
	switch cfg.Store {
	case config.StoreFile:
		logger.Info().Str("meme_dir", cfg.MemeDir).Str("state_dir", cfg.StateDir).Msg("Using file store")
		return filestore.New(cfg.MemeDir, cfg.StateDir, logger), nil
	case config.StoreBolt:
		path := filepath.Join(cfg.StateDir, boltstore.DefaultFileName)
		logger.Info().Str("path", path).Msg("Using bolt store")
		return boltstore.New(path)
	case config.StorePostgres:
		logger.Info().Msg("Using postgres store")
		database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, Debug: cfg.LogLevel == "debug"})
		if err != nil {
			return nil, err
		}
		return gormstore.NewStateStore(database), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// loadConfig loads and validates configuration and sets up logging
func loadConfig() (*config.BotConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
