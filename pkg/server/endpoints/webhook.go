package endpoints

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jinbot/jinbot/pkg/server"
)

// RegisterWebhookEndpoint registers POST /webhook/<token>. The token in the
// path keeps the URL unguessable.
func RegisterWebhookEndpoint(s *server.Server) {
	s.Router.Handle(s.Config.WebhookPath(), handleWebhook(s.Updates, s.Bot, s.Logger)).Methods("POST")
}

// handleWebhook always answers 200 so Telegram does not redeliver updates
// the bot could not handle.
func handleWebhook(updates server.UpdateParser, bot server.MemeBot, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		update, err := updates.ParseUpdate(r)
		if err != nil {
			logger.Error().Err(err).Msg("Webhook error")
			respondWithText(w, http.StatusOK, "OK")
			return
		}

		// Handling continues if Telegram drops the connection.
		bot.HandleUpdate(context.WithoutCancel(r.Context()), *update)
		respondWithText(w, http.StatusOK, "OK")
	}
}
