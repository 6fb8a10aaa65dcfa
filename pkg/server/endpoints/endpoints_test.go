package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jinbot/jinbot/pkg/config"
	"github.com/jinbot/jinbot/pkg/metrics"
	"github.com/jinbot/jinbot/pkg/server"
	"github.com/jinbot/jinbot/pkg/server/middleware"
)

const testToken = "123:abc"

type mockBot struct {
	mock.Mock
}

func (m *mockBot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	m.Called(ctx, update)
}

func (m *mockBot) SendMeme(ctx context.Context, chatID int64, randomize bool) error {
	return m.Called(ctx, chatID, randomize).Error(0)
}

func (m *mockBot) GroupID() int64 {
	return m.Called().Get(0).(int64)
}

func (m *mockBot) Interval() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

func (m *mockBot) RandomOrder() bool {
	return m.Called().Bool(0)
}

func (m *mockBot) MemeCount() int {
	return m.Called().Int(0)
}

func (m *mockBot) Scheduled() bool {
	return m.Called().Bool(0)
}

type fakeParser struct {
	update *tgbotapi.Update
	err    error
}

func (p fakeParser) ParseUpdate(*http.Request) (*tgbotapi.Update, error) {
	return p.update, p.err
}

type fakeHealth struct {
	err error
}

func (h fakeHealth) CheckConnectivity() error {
	return h.err
}

func newTestServer(t *testing.T, cfg *config.BotConfig, bot server.MemeBot, parser server.UpdateParser, health fakeHealth) *server.Server {
	t.Helper()
	if cfg == nil {
		cfg = &config.BotConfig{TelegramToken: testToken, Store: config.StoreFile, UpdateMode: config.ModeWebhook}
	}
	s := server.NewServer(cfg, bot, parser, health, metrics.NewCollector(zerolog.Nop()), zerolog.Nop())
	RegisterAll(s)
	return s
}

func do(s *server.Server, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, &mockBot{}, fakeParser{}, fakeHealth{})

	w := do(s, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestWebhookHandlesUpdate(t *testing.T) {
	bot := &mockBot{}
	update := &tgbotapi.Update{UpdateID: 9}
	bot.On("HandleUpdate", mock.Anything, *update).Return().Once()
	s := newTestServer(t, nil, bot, fakeParser{update: update}, fakeHealth{})

	w := do(s, http.MethodPost, "/webhook/"+testToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	bot.AssertExpectations(t)
}

func TestWebhookBadBodyStillOK(t *testing.T) {
	bot := &mockBot{}
	s := newTestServer(t, nil, bot, fakeParser{err: errors.New("invalid character")}, fakeHealth{})

	w := do(s, http.MethodPost, "/webhook/"+testToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	bot.AssertNotCalled(t, "HandleUpdate", mock.Anything, mock.Anything)
}

func TestWebhookWrongTokenNotFound(t *testing.T) {
	s := newTestServer(t, nil, &mockBot{}, fakeParser{}, fakeHealth{})

	w := do(s, http.MethodPost, "/webhook/guess", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendMemeWithoutGroup(t *testing.T) {
	bot := &mockBot{}
	bot.On("GroupID").Return(int64(0))
	s := newTestServer(t, nil, bot, fakeParser{}, fakeHealth{})

	w := do(s, http.MethodGet, "/send_meme", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Group chat ID not set", w.Body.String())
	bot.AssertNotCalled(t, "SendMeme", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMeme(t *testing.T) {
	bot := &mockBot{}
	bot.On("GroupID").Return(int64(-100))
	bot.On("RandomOrder").Return(true)
	bot.On("SendMeme", mock.Anything, int64(-100), true).Return(nil).Once()
	s := newTestServer(t, nil, bot, fakeParser{}, fakeHealth{})

	w := do(s, http.MethodGet, "/send_meme", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sent", w.Body.String())
	bot.AssertExpectations(t)
}

func TestSendMemeFailure(t *testing.T) {
	bot := &mockBot{}
	bot.On("GroupID").Return(int64(-100))
	bot.On("RandomOrder").Return(false)
	bot.On("SendMeme", mock.Anything, int64(-100), false).Return(errors.New("bad request")).Once()
	s := newTestServer(t, nil, bot, fakeParser{}, fakeHealth{})

	w := do(s, http.MethodGet, "/send_meme", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSendMemeRequiresTokenWhenSecretSet(t *testing.T) {
	cfg := &config.BotConfig{TelegramToken: testToken, ControlSecret: "s3cret"}
	bot := &mockBot{}
	bot.On("GroupID").Return(int64(-100))
	bot.On("RandomOrder").Return(false)
	bot.On("SendMeme", mock.Anything, int64(-100), false).Return(nil)
	s := newTestServer(t, cfg, bot, fakeParser{}, fakeHealth{})

	w := do(s, http.MethodGet, "/send_meme", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	bot.AssertNotCalled(t, "SendMeme", mock.Anything, mock.Anything, mock.Anything)

	token, err := middleware.IssueToken([]byte("s3cret"), "cron", time.Hour, time.Now())
	require.NoError(t, err)
	w = do(s, http.MethodGet, "/send_meme", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sent", w.Body.String())
}

func statusBot() *mockBot {
	bot := &mockBot{}
	bot.On("GroupID").Return(int64(-100))
	bot.On("Interval").Return(15 * time.Minute)
	bot.On("RandomOrder").Return(true)
	bot.On("MemeCount").Return(42)
	bot.On("Scheduled").Return(true)
	return bot
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, nil, statusBot(), fakeParser{}, fakeHealth{})

	w := do(s, http.MethodGet, "/status", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusResponse{
		Status:          "ok",
		Memes:           42,
		GroupID:         -100,
		IntervalMinutes: 15,
		RandomOrder:     true,
		Scheduled:       true,
		Store:           "file",
		UpdateMode:      "webhook",
	}, resp)
}

func TestStatusStoreDown(t *testing.T) {
	s := newTestServer(t, nil, statusBot(), fakeParser{}, fakeHealth{err: errors.New("connection refused")})

	w := do(s, http.MethodGet, "/status", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unavailable", resp.Status)
	assert.Equal(t, "connection refused", resp.Error)
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, nil, &mockBot{}, fakeParser{}, fakeHealth{})
	s.Metrics.Like("heart")

	w := do(s, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `jinbot_likes_total{reaction="heart"} 1`)
}

func TestRecoversFromPanics(t *testing.T) {
	bot := &mockBot{}
	bot.On("GroupID").Run(func(mock.Arguments) { panic("boom") })
	s := newTestServer(t, nil, bot, fakeParser{}, fakeHealth{})

	w := do(s, http.MethodGet, "/send_meme", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
