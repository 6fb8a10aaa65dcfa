package bot

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/jinbot/jinbot/pkg/likes"
	"github.com/jinbot/jinbot/pkg/meme"
	"github.com/jinbot/jinbot/pkg/metrics"
	"github.com/jinbot/jinbot/pkg/schedule"
	"github.com/jinbot/jinbot/pkg/server/store"
	"github.com/jinbot/jinbot/pkg/telegram"
)

// Messenger is the part of the Telegram client the bot talks through
type Messenger interface {
	SendText(chatID int64, text string) error
	SendPhoto(chatID int64, u telegram.Upload) error
	SendDocument(chatID int64, u telegram.Upload) error
	EditCaption(chatID int64, messageID int, caption string, keyboard tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(callbackID string) error
	ChatMemberStatus(chatID, userID int64) (string, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

var _ Messenger = (*telegram.Client)(nil)

// Options configure a Bot
type Options struct {
	// Username is the bot's @username. Commands addressed to another bot
	// ("/start@other_bot") are ignored when it is set.
	Username    string
	Interval    time.Duration
	RandomOrder bool
	Metrics     *metrics.Collector
}

// Bot handles Telegram updates and posts memes to the bound group
type Bot struct {
	client  Messenger
	library *meme.Library
	likes   *likes.Tracker
	groups  store.GroupStore
	poster  *schedule.Poster
	metrics *metrics.Collector
	logger  zerolog.Logger

	username  string
	randomize bool

	mu       sync.Mutex
	groupID  int64
	interval time.Duration
}

// New creates a bot. The bound group is read from groups; an unset or
// unreadable group leaves the bot unbound.
func New(client Messenger, library *meme.Library, tracker *likes.Tracker, groups store.GroupStore, logger zerolog.Logger, opts Options) *Bot {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Minute
	}

	b := &Bot{
		client:    client,
		library:   library,
		likes:     tracker,
		groups:    groups,
		metrics:   opts.Metrics,
		logger:    logger.With().Str("component", "bot").Logger(),
		username:  opts.Username,
		randomize: opts.RandomOrder,
		interval:  opts.Interval,
	}
	b.poster = schedule.NewPoster(b.scheduledPost, logger)

	groupID, err := groups.LoadGroupID()
	switch {
	case err == nil:
		b.groupID = groupID
		b.logger.Info().Int64("chat_id", groupID).Msg("Loaded group chat ID")
	case errors.Is(err, store.ErrGroupNotSet):
	default:
		b.logger.Warn().Err(err).Msg("Failed to load group chat ID")
	}

	b.metrics.SetMemesAvailable(library.Len())
	b.metrics.SetPostInterval(int(b.interval / time.Minute))
	return b
}

// Start schedules posts for the bound group, if there is one
func (b *Bot) Start() {
	b.mu.Lock()
	groupID, interval := b.groupID, b.interval
	b.mu.Unlock()

	if groupID == 0 {
		b.logger.Warn().Msg("Group chat ID not set. Send a message in the group or use /init_group.")
		return
	}
	b.poster.Start(groupID, interval)
}

// Stop stops scheduled posts
func (b *Bot) Stop() {
	b.poster.Stop()
}

// GroupID returns the bound group, or 0
func (b *Bot) GroupID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.groupID
}

// Interval returns the posting interval
func (b *Bot) Interval() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.interval
}

// RandomOrder reports whether scheduled posts pick memes at random
func (b *Bot) RandomOrder() bool {
	return b.randomize
}

// MemeCount returns the number of memes in the library
func (b *Bot) MemeCount() int {
	return b.library.Len()
}

// Scheduled reports whether the post schedule is running
func (b *Bot) Scheduled() bool {
	return b.poster.Running()
}

// Library returns the meme library
func (b *Bot) Library() *meme.Library {
	return b.library
}

// Poster returns the post scheduler
func (b *Bot) Poster() *schedule.Poster {
	return b.poster
}

func (b *Bot) scheduledPost(ctx context.Context, chatID int64) error {
	return b.SendMeme(ctx, chatID, b.randomize)
}

// bindGroup records chat as the bound group and persists it. The schedule
// is (re)started unless it already posts to this chat.
func (b *Bot) bindGroup(chat *tgbotapi.Chat, source string) {
	b.mu.Lock()
	b.groupID = chat.ID
	interval := b.interval
	b.mu.Unlock()

	b.activateGroup(chat, source, interval)
}

// bindIfUnbound binds chat only when no group is bound yet. The check and
// the assignment happen under one lock, so of several groups racing to be
// detected exactly one wins.
func (b *Bot) bindIfUnbound(chat *tgbotapi.Chat, source string) bool {
	b.mu.Lock()
	if b.groupID != 0 {
		b.mu.Unlock()
		return false
	}
	b.groupID = chat.ID
	interval := b.interval
	b.mu.Unlock()

	b.activateGroup(chat, source, interval)
	return true
}

func (b *Bot) activateGroup(chat *tgbotapi.Chat, source string, interval time.Duration) {
	if err := b.groups.SaveGroupID(chat.ID); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to save group chat ID")
	} else {
		b.logger.Info().Int64("chat_id", chat.ID).Str("source", source).Msg("Saved group chat ID")
	}

	if !b.poster.Running() || b.poster.ChatID() != chat.ID {
		b.poster.Start(chat.ID, interval)
	}

	auditGroupBound(chat, source)
}

func isGroup(chat *tgbotapi.Chat) bool {
	return chat != nil && (chat.IsGroup() || chat.IsSuperGroup())
}
