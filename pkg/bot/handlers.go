package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jinbot/jinbot/pkg/config"
	"github.com/jinbot/jinbot/pkg/likes"
	"github.com/jinbot/jinbot/pkg/meme"
	"github.com/jinbot/jinbot/pkg/telegram"
)

// Replies sent by the command handlers
const (
	msgOnline        = "Bot is online!"
	msgAdminsOnly    = "Only admins can set the posting interval."
	msgIntervalUsage = "Usage: /setinterval <minutes>"
	msgIntervalRange = "Please select a value between 1 and 60."
	msgAddUsage      = "Please reply to a photo or document with /add."
	msgUnsupported   = "Unsupported file type."
	msgAddFailed     = "Failed to download the file."
	msgAdded         = "✅ Meme added successfully."
	msgGroupsOnly    = "This command can only be used in groups."
)

// HandleUpdate processes one Telegram update. Failures are logged; the
// caller always treats the update as handled.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.metrics.Update("callback_query")
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.metrics.Update("command")
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.metrics.Update("message")
		b.detectGroup(update.Message)
	default:
		b.metrics.Update("other")
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if b.username != "" {
		if _, target, ok := strings.Cut(msg.CommandWithAt(), "@"); ok && !strings.EqualFold(target, b.username) {
			return
		}
	}

	command := msg.Command()
	log := b.logger.With().Str("command", command).Int64("chat_id", msg.Chat.ID).Logger()

	var err error
	switch command {
	case "start":
		err = b.client.SendText(msg.Chat.ID, msgOnline)
	case "setinterval":
		err = b.setInterval(msg)
	case "add":
		err = b.addMeme(ctx, msg)
	case "getgroupid":
		err = b.getGroupID(msg)
	case "init_group":
		err = b.initGroup(msg)
	default:
		return
	}
	b.metrics.Command(command)

	if err != nil {
		log.Error().Err(err).Msg("Command failed")
	}
}

func (b *Bot) setInterval(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	if msg.From == nil {
		return b.client.SendText(chatID, msgAdminsOnly)
	}

	status, err := b.client.ChatMemberStatus(chatID, msg.From.ID)
	if err != nil {
		return fmt.Errorf("failed to look up chat member: %w", err)
	}
	if status != telegram.StatusAdministrator && status != telegram.StatusCreator {
		auditInterval(msg, 0, false)
		return b.client.SendText(chatID, msgAdminsOnly)
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 || !isDigits(args[0]) {
		return b.client.SendText(chatID, msgIntervalUsage)
	}
	minutes, err := strconv.Atoi(args[0])
	if err != nil || minutes < config.MinPostInterval || minutes > config.MaxPostInterval {
		return b.client.SendText(chatID, msgIntervalRange)
	}

	interval := time.Duration(minutes) * time.Minute
	b.mu.Lock()
	b.interval = interval
	groupID := b.groupID
	b.mu.Unlock()

	b.poster.Start(groupID, interval)
	b.metrics.SetPostInterval(minutes)
	auditInterval(msg, minutes, true)

	return b.client.SendText(chatID, fmt.Sprintf("✅ Post interval set to every %d minute(s).", minutes))
}

func (b *Bot) addMeme(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	replied := msg.ReplyToMessage
	if replied == nil {
		return b.client.SendText(chatID, msgAddUsage)
	}

	var fileID, name string
	switch {
	case len(replied.Photo) > 0:
		// Sizes are ordered smallest to largest.
		fileID = replied.Photo[len(replied.Photo)-1].FileID
		name = fileID + ".jpg"
	case replied.Document != nil && replied.Document.FileName != "" && meme.IsAllowed(replied.Document.FileName):
		fileID = replied.Document.FileID
		name = replied.Document.FileName
	default:
		return b.client.SendText(chatID, msgUnsupported)
	}

	var buf bytes.Buffer
	if err := b.client.DownloadFile(ctx, fileID, &buf); err != nil {
		auditMemeAdded(msg, name, err)
		b.logger.Error().Err(err).Str("meme", name).Msg("Failed to download meme")
		return b.client.SendText(chatID, msgAddFailed)
	}

	m, err := b.library.Add(name, &buf)
	if errors.Is(err, meme.ErrUnsupportedFile) {
		return b.client.SendText(chatID, msgUnsupported)
	}
	if err != nil {
		auditMemeAdded(msg, name, err)
		return err
	}

	b.metrics.SetMemesAvailable(b.library.Len())
	auditMemeAdded(msg, m.Name(), nil)
	return b.client.SendText(chatID, msgAdded)
}

func (b *Bot) getGroupID(msg *tgbotapi.Message) error {
	chat := msg.Chat
	if err := b.client.SendText(chat.ID, fmt.Sprintf("Group chat ID is: %d", chat.ID)); err != nil {
		return err
	}
	if isGroup(chat) {
		b.bindIfUnbound(chat, "getgroupid")
	}
	return nil
}

func (b *Bot) initGroup(msg *tgbotapi.Message) error {
	chat := msg.Chat
	if !isGroup(chat) {
		return b.client.SendText(chat.ID, msgGroupsOnly)
	}
	b.bindGroup(chat, "init_group")
	return b.client.SendText(chat.ID, fmt.Sprintf("✅ Group initialized with ID %d", chat.ID))
}

// detectGroup binds the first group the bot hears a message in
func (b *Bot) detectGroup(msg *tgbotapi.Message) {
	if !isGroup(msg.Chat) || !b.bindIfUnbound(msg.Chat, "message") {
		return
	}
	b.logger.Info().Int64("chat_id", msg.Chat.ID).Msg("Started scheduled posts; group chat ID detected.")
}

func (b *Bot) handleCallback(q *tgbotapi.CallbackQuery) {
	if err := b.client.AnswerCallback(q.ID); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to answer callback query")
	}

	reaction, filename, err := ParseCallbackData(q.Data)
	if err != nil {
		b.logger.Debug().Err(err).Str("data", q.Data).Msg("Ignoring callback")
		return
	}

	list := b.likes.Add(filename, reaction)
	b.metrics.Like(reaction.String())
	auditLike(q, filename, reaction, len(list))

	if q.Message == nil {
		return
	}
	err = b.client.EditCaption(q.Message.Chat.ID, q.Message.MessageID, likes.Caption(list), Keyboard(filename))
	if err != nil {
		b.logger.Warn().Err(err).Str("meme", filename).Msg("Failed to update likes caption")
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
