package endpoints

import (
	"net/http"

	"github.com/jinbot/jinbot/pkg/config"
	"github.com/jinbot/jinbot/pkg/server"
	"github.com/jinbot/jinbot/pkg/server/store"
)

// StatusResponse is the body of GET /status
type StatusResponse struct {
	Status          string `json:"status"`
	Memes           int    `json:"memes"`
	GroupID         int64  `json:"group_id"`
	IntervalMinutes int    `json:"interval_minutes"`
	RandomOrder     bool   `json:"random_order"`
	Scheduled       bool   `json:"scheduled"`
	Store           string `json:"store"`
	UpdateMode      string `json:"update_mode"`
	Error           string `json:"error,omitempty"`
}

// RegisterStatusEndpoint registers GET /status
func RegisterStatusEndpoint(s *server.Server) {
	s.Router.HandleFunc("/status", handleStatus(s.Bot, s.HealthStore, s.Config)).Methods("GET")
}

func handleStatus(bot server.MemeBot, healthStore store.HealthStore, cfg *config.BotConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Status:          "ok",
			Memes:           bot.MemeCount(),
			GroupID:         bot.GroupID(),
			IntervalMinutes: int(bot.Interval().Minutes()),
			RandomOrder:     bot.RandomOrder(),
			Scheduled:       bot.Scheduled(),
			Store:           cfg.Store,
			UpdateMode:      cfg.UpdateMode,
		}

		if err := healthStore.CheckConnectivity(); err != nil {
			resp.Status = "unavailable"
			resp.Error = err.Error()
			respondWithJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		respondWithJSON(w, http.StatusOK, resp)
	}
}
