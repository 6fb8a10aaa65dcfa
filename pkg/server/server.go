package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/jinbot/jinbot/pkg/config"
	"github.com/jinbot/jinbot/pkg/metrics"
	"github.com/jinbot/jinbot/pkg/server/middleware"
	"github.com/jinbot/jinbot/pkg/server/store"
)

// MemeBot is the bot as the HTTP endpoints see it
type MemeBot interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
	SendMeme(ctx context.Context, chatID int64, randomize bool) error
	GroupID() int64
	Interval() time.Duration
	RandomOrder() bool
	MemeCount() int
	Scheduled() bool
}

// UpdateParser decodes a Telegram webhook request
type UpdateParser interface {
	ParseUpdate(r *http.Request) (*tgbotapi.Update, error)
}

type Server struct {
	Config        *config.BotConfig
	Bot           MemeBot
	Updates       UpdateParser
	HealthStore   store.HealthStore
	Metrics       *metrics.Collector
	JWTMiddleware *middleware.JWTAuthenticator
	Router        *mux.Router
	Logger        zerolog.Logger
	srv           *http.Server
}

// NewServer wires the router and HTTP server. Control endpoints require a
// bearer token when cfg.ControlSecret is set.
func NewServer(
	cfg *config.BotConfig,
	bot MemeBot,
	updates UpdateParser,
	healthStore store.HealthStore,
	collector *metrics.Collector,
	logger zerolog.Logger,
) *Server {
	router := mux.NewRouter().UseEncodedPath()

	accessLog := logger.With().Str("component", "http").Logger()
	handler := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: accessLog}),
		handlers.PrintRecoveryStack(true),
	)(handlers.LoggingHandler(accessLog, router))

	srv := &http.Server{
		Handler:      handler,
		Addr:         cfg.Addr(),
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	var jwtMiddleware *middleware.JWTAuthenticator
	if cfg.ControlSecret != "" {
		jwtMiddleware = middleware.NewJWTAuthenticator([]byte(cfg.ControlSecret))
	}

	return &Server{
		Config:        cfg,
		Bot:           bot,
		Updates:       updates,
		HealthStore:   healthStore,
		Metrics:       collector,
		JWTMiddleware: jwtMiddleware,
		Router:        router,
		Logger:        logger,
		srv:           srv,
	}
}

// Protect wraps h with the JWT middleware when one is configured
func (s *Server) Protect(h http.Handler) http.Handler {
	if s.JWTMiddleware == nil {
		return h
	}
	return s.JWTMiddleware.Middleware(h)
}

// Handler returns the full handler chain
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.Logger.Info().Str("addr", s.srv.Addr).Msg("Starting HTTP server")
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
