package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jinbot/jinbot/pkg/likes"
	"github.com/jinbot/jinbot/pkg/meme"
	"github.com/jinbot/jinbot/pkg/metrics"
	"github.com/jinbot/jinbot/pkg/telegram"
)

// CallbackPrefix starts the data of every like button
const CallbackPrefix = "LIKE_"

// MaxCallbackData is Telegram's limit on callback_data, in bytes
const MaxCallbackData = 64

// ErrMalformedCallback is returned for callback data that is not a like
var ErrMalformedCallback = errors.New("malformed callback data")

// CallbackData encodes a like button: LIKE_<reaction>|<filename>
func CallbackData(r likes.Reaction, filename string) string {
	return CallbackPrefix + r.String() + "|" + filename
}

// ParseCallbackData decodes LIKE_<reaction>|<filename>. The file name is
// everything after the first "|".
func ParseCallbackData(data string) (likes.Reaction, string, error) {
	rest, ok := strings.CutPrefix(data, CallbackPrefix)
	if !ok {
		return 0, "", ErrMalformedCallback
	}
	name, filename, ok := strings.Cut(rest, "|")
	if !ok || filename == "" {
		return 0, "", ErrMalformedCallback
	}
	r, ok := likes.ParseReaction(name)
	if !ok {
		return 0, "", fmt.Errorf("%w: unknown reaction %q", ErrMalformedCallback, name)
	}
	return r, filename, nil
}

// Keyboard builds the row of like buttons for a meme. Names too long for
// Telegram's callback data limit get no buttons.
func Keyboard(filename string) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, r := range likes.ReactionValues() {
		data := CallbackData(r, filename)
		if len(data) > MaxCallbackData {
			return tgbotapi.InlineKeyboardMarkup{}
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(r.Emoji(), data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// SendMeme posts the next meme to chatID as a photo, falling back to a
// document when Telegram rejects the photo. An empty library sends a
// notice instead.
func (b *Bot) SendMeme(ctx context.Context, chatID int64, randomize bool) error {
	m, err := b.library.Next(randomize)
	if errors.Is(err, meme.ErrNoMemes) {
		b.logger.Warn().Msg("No memes available to send.")
		b.metrics.MemeSent(metrics.SentEmpty)
		if err := b.client.SendText(chatID, "No memes available."); err != nil {
			return fmt.Errorf("failed to send notice: %w", err)
		}
		return nil
	}
	if err != nil {
		return err
	}

	name := m.Name()
	caption := likes.Caption(b.likes.Get(name))
	keyboard := Keyboard(name)
	if len(keyboard.InlineKeyboard) == 0 {
		b.logger.Warn().Str("meme", name).Msg("File name too long for like buttons")
	}

	photoErr := b.upload(m, chatID, caption, keyboard, b.client.SendPhoto)
	if photoErr == nil {
		b.metrics.MemeSent(metrics.SentPhoto)
		auditMemeSent(chatID, name, false, nil)
		return nil
	}
	b.logger.Debug().Err(photoErr).Str("meme", name).Msg("Photo upload failed, sending as document")

	if err := b.upload(m, chatID, caption, keyboard, b.client.SendDocument); err != nil {
		b.logger.Error().Err(err).Str("meme", name).Msgf("Failed to send meme %s", name)
		b.metrics.MemeSent(metrics.SentFailed)
		auditMemeSent(chatID, name, true, err)
		return fmt.Errorf("failed to send meme %s: %w", name, err)
	}
	b.metrics.MemeSent(metrics.SentDocument)
	auditMemeSent(chatID, name, true, nil)
	return nil
}

func (b *Bot) upload(m meme.Meme, chatID int64, caption string, keyboard tgbotapi.InlineKeyboardMarkup, send func(int64, telegram.Upload) error) error {
	f, err := m.Open()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return send(chatID, telegram.Upload{
		Name:     m.Name(),
		Reader:   f,
		Caption:  caption,
		Keyboard: keyboard,
	})
}
