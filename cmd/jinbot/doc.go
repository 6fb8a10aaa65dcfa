// Command jinbot runs the meme bot and its maintenance tasks.
//
// # Quick Start
//
//	export TELEGRAM_TOKEN=123456:ABC...
//	export WEBHOOK_BASE=https://jinbot.example.com
//	jinbot server
//
// Put images in the meme directory (MEME_DIR, default "memes"), add the bot
// to a group and send any message there, or use /init_group.
//
// # Commands
//
//   - server: run the bot and its HTTP server
//   - wait: block until the HTTP server answers
//   - configuration show|check: print or validate the configuration
//   - db migrate|down|status: manage the postgres schema
//   - webhook set|delete|info: manage the Telegram webhook
//   - token issue: sign a bearer token for /send_meme
//   - memes list: list memes with their like counts
//   - audit list: show recent audit records
//
// # Environment Variables
//
//   - TELEGRAM_TOKEN: bot token from BotFather (required)
//   - WEBHOOK_BASE: public base URL for the webhook
//   - PORT, BIND_ADDRESS: HTTP listen address (default 0.0.0.0:10000)
//   - MEME_DIR, JINBOT_STATE_DIR: meme and state directories
//   - JINBOT_POST_INTERVAL: minutes between posts, 1..60 (default 10)
//   - JINBOT_RANDOM_ORDER: pick memes at random
//   - JINBOT_STORE: file, bolt or postgres
//   - DATABASE_URL: postgres connection string
//   - JINBOT_UPDATE_MODE: webhook or polling
//   - JINBOT_CONTROL_SECRET: HS256 secret guarding /send_meme
//   - JINBOT_LOG_LEVEL: zerolog level
//   - AUDIT_DATABASE_URL: postgres database for audit records
package main
