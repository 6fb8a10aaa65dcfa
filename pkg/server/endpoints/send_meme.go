package endpoints

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jinbot/jinbot/pkg/server"
)

// RegisterSendMemeEndpoint registers GET /send_meme, which posts the next
// meme to the bound group immediately.
func RegisterSendMemeEndpoint(s *server.Server) {
	s.Router.Handle("/send_meme", s.Protect(handleSendMeme(s.Bot, s.Logger))).Methods("GET", "POST")
}

func handleSendMeme(bot server.MemeBot, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := bot.GroupID()
		if chatID == 0 {
			respondWithText(w, http.StatusBadRequest, "Group chat ID not set")
			return
		}

		if err := bot.SendMeme(r.Context(), chatID, bot.RandomOrder()); err != nil {
			logger.Error().Err(err).Int64("chat_id", chatID).Msg("Manual meme post failed")
			respondWithText(w, http.StatusBadGateway, "Failed to send meme")
			return
		}
		respondWithText(w, http.StatusOK, "Sent")
	}
}
