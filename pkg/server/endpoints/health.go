package endpoints

import (
	"net/http"

	"github.com/jinbot/jinbot/pkg/server"
)

// RegisterHealthEndpoint registers GET / for uptime checks
func RegisterHealthEndpoint(s *server.Server) {
	s.Router.HandleFunc("/", handleHealth()).Methods("GET", "HEAD")
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithText(w, http.StatusOK, "OK")
	}
}
