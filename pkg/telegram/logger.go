package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

var (
	_ retryablehttp.LeveledLogger = retryLogger{}
	_ tgbotapi.BotLogger          = apiLogger{}
)

// retryLogger routes retryablehttp's logging into zerolog. Request
// URLs carry the bot token, so the url key is dropped and the token is
// masked in the remaining values.
type retryLogger struct {
	logger zerolog.Logger
	token  string
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Error(), keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Debug(), keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Trace(), keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Warn(), keysAndValues).Msg(msg)
}

func (l retryLogger) event(e *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok || key == "url" {
			continue
		}
		switch v := keysAndValues[i+1].(type) {
		case error:
			e = e.Str(key, mask(v.Error(), l.token))
		case string:
			e = e.Str(key, mask(v, l.token))
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}

// apiLogger receives the Bot API library's own log lines, such as
// getUpdates failures during long polling.
type apiLogger struct {
	logger zerolog.Logger
	token  string
}

func (l apiLogger) Println(v ...interface{}) {
	l.logger.Warn().Str("component", "telegram-bot-api").Msg(mask(strings.TrimSuffix(fmt.Sprintln(v...), "\n"), l.token))
}

func (l apiLogger) Printf(format string, v ...interface{}) {
	l.logger.Warn().Str("component", "telegram-bot-api").Msg(mask(fmt.Sprintf(format, v...), l.token))
}

func mask(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, redactedToken)
}
