package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// Chat member statuses that may administer the bot
const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
)

// Upload is a file sent to a chat with a caption and inline keyboard
type Upload struct {
	Name     string
	Reader   io.Reader
	Caption  string
	Keyboard tgbotapi.InlineKeyboardMarkup
}

// HasKeyboard reports whether the upload carries any buttons
func (u Upload) HasKeyboard() bool {
	return len(u.Keyboard.InlineKeyboard) > 0
}

// Client talks to the Telegram Bot API. Requests go through a retrying
// HTTP client so transient 429/5xx answers are retried with backoff.
type Client struct {
	api          *tgbotapi.BotAPI
	http         *http.Client
	fileEndpoint string
	logger       zerolog.Logger
}

// Options tune the underlying HTTP client
type Options struct {
	// Endpoint overrides the Bot API endpoint format (tgbotapi.APIEndpoint)
	Endpoint string
	// FileEndpoint overrides the file download format (tgbotapi.FileEndpoint)
	FileEndpoint string
	RetryMax int
	Timeout  time.Duration
}

// New creates a client and verifies the token with getMe
func New(token string, logger zerolog.Logger, opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = tgbotapi.APIEndpoint
	}
	if opts.FileEndpoint == "" {
		opts.FileEndpoint = tgbotapi.FileEndpoint
	}
	if opts.RetryMax == 0 {
		opts.RetryMax = 3
	}
	if opts.Timeout == 0 {
		// Long polling holds requests open for up to a minute.
		opts.Timeout = 90 * time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = retryLogger{logger: logger, token: token}
	httpClient := rc.StandardClient()
	_ = tgbotapi.SetLogger(apiLogger{logger: logger, token: token})

	api, err := tgbotapi.NewBotAPIWithClient(token, opts.Endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", redact(err, token))
	}
	logger.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	return &Client{
		api:          api,
		http:         httpClient,
		fileEndpoint: opts.FileEndpoint,
		logger:       logger,
	}, nil
}

// redactedToken replaces the bot token in error text
const redactedToken = "<token>"

// redactedError hides the bot token that request URLs embed in transport
// errors. The wrapped error stays reachable through errors.Is/As.
type redactedError struct {
	err   error
	token string
}

func (e *redactedError) Error() string {
	return mask(e.err.Error(), e.token)
}

func (e *redactedError) Unwrap() error {
	return e.err
}

func redact(err error, token string) error {
	if err == nil || token == "" {
		return err
	}
	return &redactedError{err: err, token: token}
}

func (c *Client) redact(err error) error {
	return redact(err, c.api.Token)
}

// Username returns the bot's @username
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// SendText sends a plain text message
func (c *Client) SendText(chatID int64, text string) error {
	_, err := c.api.Send(tgbotapi.NewMessage(chatID, text))
	return c.redact(err)
}

// SendPhoto uploads an image as a photo
func (c *Client) SendPhoto(chatID int64, u Upload) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileReader{Name: u.Name, Reader: u.Reader})
	photo.Caption = u.Caption
	if u.HasKeyboard() {
		photo.ReplyMarkup = u.Keyboard
	}
	_, err := c.api.Send(photo)
	return c.redact(err)
}

// SendDocument uploads a file as a document. Telegram rejects some images
// as photos (size, dimensions, animated webp) but accepts them this way.
func (c *Client) SendDocument(chatID int64, u Upload) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: u.Name, Reader: u.Reader})
	doc.Caption = u.Caption
	if u.HasKeyboard() {
		doc.ReplyMarkup = u.Keyboard
	}
	_, err := c.api.Send(doc)
	return c.redact(err)
}

// EditCaption replaces a message's caption and keyboard
func (c *Client) EditCaption(chatID int64, messageID int, caption string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageCaption(chatID, messageID, caption)
	edit.ReplyMarkup = &keyboard
	_, err := c.api.Request(edit)
	return c.redact(err)
}

// AnswerCallback acknowledges a callback query so the client stops spinning
func (c *Client) AnswerCallback(callbackID string) error {
	_, err := c.api.Request(tgbotapi.NewCallback(callbackID, ""))
	return c.redact(err)
}

// ChatMemberStatus returns the user's status in the chat
// ("creator", "administrator", "member", ...)
func (c *Client) ChatMemberStatus(chatID, userID int64) (string, error) {
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", c.redact(err)
	}
	return member.Status, nil
}

// DownloadFile fetches a file previously sent to the bot and writes it to w
func (c *Client) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	file, err := c.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return fmt.Errorf("failed to resolve file %s: %w", fileID, c.redact(err))
	}
	url := fmt.Sprintf(c.fileEndpoint, c.api.Token, file.FilePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.redact(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file %s: %w", fileID, c.redact(err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file %s: status %d", fileID, resp.StatusCode)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// SetWebhook points Telegram at url
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	_, err = c.api.Request(wh)
	return c.redact(err)
}

// DeleteWebhook removes the webhook, keeping pending updates
func (c *Client) DeleteWebhook() error {
	_, err := c.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false})
	return c.redact(err)
}

// WebhookInfo returns the currently registered webhook URL and pending count
func (c *Client) WebhookInfo() (string, int, error) {
	info, err := c.api.GetWebhookInfo()
	if err != nil {
		return "", 0, c.redact(err)
	}
	return info.URL, info.PendingUpdateCount, nil
}

// ParseUpdate decodes a webhook request body
func (c *Client) ParseUpdate(r *http.Request) (*tgbotapi.Update, error) {
	return c.api.HandleUpdate(r)
}

// PollUpdates long-polls getUpdates and delivers updates to handle until
// ctx is done.
func (c *Client) PollUpdates(ctx context.Context, handle func(context.Context, tgbotapi.Update)) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.api.GetUpdatesChan(u)

	c.logger.Info().Msg("Polling for updates")
	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			handle(ctx, update)
		}
	}
}
