package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/jinbot/jinbot/pkg/bot"
	"github.com/jinbot/jinbot/pkg/config"
	"github.com/jinbot/jinbot/pkg/likes"
	"github.com/jinbot/jinbot/pkg/meme"
	"github.com/jinbot/jinbot/pkg/metrics"
	"github.com/jinbot/jinbot/pkg/server"
	"github.com/jinbot/jinbot/pkg/server/endpoints"
	gormstore "github.com/jinbot/jinbot/pkg/server/store/gorm"
)

const (
	testToken  = "123456:TEST-TOKEN"
	testSecret = "integration-secret"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

// ServerInstance is a bot and HTTP server backed by the test database,
// started fresh for each scenario
type ServerInstance struct {
	Config    *config.BotConfig
	Server    *server.Server
	Bot       *bot.Bot
	Messenger *FakeMessenger
	ServerURL string
}

// jsonUpdates decodes webhook bodies without a live Bot API connection
type jsonUpdates struct{}

func (jsonUpdates) ParseUpdate(r *http.Request) (*tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		return nil, err
	}
	return &update, nil
}

// StartServer starts a bot whose memes live in memeDir
func StartServer(tc *TestContext, memeDir string) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))
	cfg := &config.BotConfig{
		TelegramToken:       testToken,
		BindAddress:         "127.0.0.1",
		Port:                port,
		MemeDir:             memeDir,
		StateDir:            memeDir,
		PostIntervalMinutes: 10,
		Store:               config.StorePostgres,
		UpdateMode:          config.ModeWebhook,
		ControlSecret:       testSecret,
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	st := gormstore.NewStateStore(tc.DB)

	library, err := meme.NewLibrary(memeDir, logger)
	if err != nil {
		return nil, err
	}
	tracker := likes.NewTracker(st, logger)
	if err := tracker.Load(); err != nil {
		return nil, err
	}

	messenger := NewFakeMessenger()
	collector := metrics.NewCollector(logger)
	b := bot.New(messenger, library, tracker, st, logger, bot.Options{
		Username:    "jinbot_test_bot",
		Interval:    cfg.PostInterval(),
		RandomOrder: false,
		Metrics:     collector,
	})

	s := server.NewServer(cfg, b, jsonUpdates{}, st, collector, logger)
	endpoints.RegisterAll(s)

	b.Start()
	go func() { _ = s.Start() }()

	instance := &ServerInstance{
		Config:    cfg,
		Server:    s,
		Bot:       b,
		Messenger: messenger,
		ServerURL: fmt.Sprintf("http://127.0.0.1:%d", port),
	}
	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, err
	}
	return instance, nil
}

// Stop stops the schedule and the HTTP server. The shared database stays open.
func (si *ServerInstance) Stop() {
	si.Bot.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = si.Server.Shutdown(ctx)
}

// WebhookURL is where Telegram would post updates
func (si *ServerInstance) WebhookURL() string {
	return si.ServerURL + si.Config.WebhookPath()
}

// waitForServer polls the server until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

func writeMeme(dir, name string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte("\x89PNG fake image"), 0644)
}
