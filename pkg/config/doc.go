// Package config provides configuration management for jinbot.
//
// Configuration is loaded in three layers, later layers winning:
//
//   - Built-in defaults
//   - A YAML file at $JINBOT_CONFIG_PATH/jinbot.yml (optional)
//   - Environment variables
//
// # Key Configuration Options
//
//   - TELEGRAM_TOKEN: Bot API token (required)
//   - WEBHOOK_BASE: Public base URL for the webhook
//   - PORT: Server listen port (default 10000)
//   - MEME_DIR: Directory memes are read from (default "memes")
//   - JINBOT_STORE: State backend, one of file, bolt, postgres
//   - DATABASE_URL: Postgres connection string for the postgres store
//   - JINBOT_LOG_LEVEL: Logging verbosity
package config
