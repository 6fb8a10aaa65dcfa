// Package server provides the HTTP server for jinbot.
//
// The server receives Telegram webhook updates and exposes a few operational
// endpoints. It uses gorilla/mux for routing, with gorilla/handlers for
// request logging and panic recovery.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, bot, client, store, collector, logger)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal().Err(err).Msg("server failed")
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Bot: the meme bot updates are dispatched to
//   - Updates: decodes webhook request bodies
//   - HealthStore: backs the /status connectivity check
//   - Metrics: Prometheus collector served on /metrics
//   - JWTMiddleware: bearer token check for control endpoints, when
//     JINBOT_CONTROL_SECRET is set
//
// # Endpoints
//
//   - GET|HEAD / - health check, always "OK"
//   - POST /webhook/{token} - Telegram updates
//   - GET|POST /send_meme - post one meme to the bound group
//   - GET /status - bot state as JSON
//   - GET /metrics - Prometheus metrics
package server
