package endpoints

import (
	"net/http"

	"github.com/jinbot/jinbot/pkg/server"
)

// RegisterMetricsEndpoint registers GET /metrics
func RegisterMetricsEndpoint(s *server.Server) {
	if s.Metrics == nil {
		s.Router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
			respondWithError(w, http.StatusNotFound, "metrics disabled")
		}).Methods("GET")
		return
	}
	s.Router.Handle("/metrics", s.Metrics.Handler()).Methods("GET")
}
