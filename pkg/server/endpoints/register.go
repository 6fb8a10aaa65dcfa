package endpoints

import (
	"github.com/jinbot/jinbot/pkg/server"
)

// RegisterAll registers all endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterHealthEndpoint(srv)
	RegisterWebhookEndpoint(srv)
	RegisterSendMemeEndpoint(srv)
	RegisterStatusEndpoint(srv)
	RegisterMetricsEndpoint(srv)
}
