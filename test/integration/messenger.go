package integration

import (
	"context"
	"fmt"
	"io"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jinbot/jinbot/pkg/telegram"
)

// SentMessage is one outgoing call recorded by FakeMessenger
type SentMessage struct {
	Kind    string // text, photo, document, caption
	ChatID  int64
	Text    string // message text or caption
	File    string
	Buttons int
}

// FakeMessenger stands in for the Telegram Bot API
type FakeMessenger struct {
	mu   sync.Mutex
	sent []SentMessage

	// memberStatus is returned for every chat member lookup
	memberStatus string
	// Files maps file IDs to the bytes DownloadFile returns
	Files map[string][]byte
}

func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{
		memberStatus: telegram.StatusAdministrator,
		Files:        make(map[string][]byte),
	}
}

func (m *FakeMessenger) record(msg SentMessage) {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
}

// Sent returns a copy of everything sent so far
func (m *FakeMessenger) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}

func (m *FakeMessenger) SendText(chatID int64, text string) error {
	m.record(SentMessage{Kind: "text", ChatID: chatID, Text: text})
	return nil
}

func (m *FakeMessenger) SendPhoto(chatID int64, u telegram.Upload) error {
	_, _ = io.Copy(io.Discard, u.Reader)
	m.record(SentMessage{Kind: "photo", ChatID: chatID, Text: u.Caption, File: u.Name, Buttons: buttons(u.Keyboard)})
	return nil
}

func (m *FakeMessenger) SendDocument(chatID int64, u telegram.Upload) error {
	_, _ = io.Copy(io.Discard, u.Reader)
	m.record(SentMessage{Kind: "document", ChatID: chatID, Text: u.Caption, File: u.Name, Buttons: buttons(u.Keyboard)})
	return nil
}

func (m *FakeMessenger) EditCaption(chatID int64, messageID int, caption string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	m.record(SentMessage{Kind: "caption", ChatID: chatID, Text: caption, Buttons: buttons(keyboard)})
	return nil
}

func (m *FakeMessenger) AnswerCallback(string) error {
	return nil
}

// SetMemberStatus changes the status reported for every chat member
func (m *FakeMessenger) SetMemberStatus(status string) {
	m.mu.Lock()
	m.memberStatus = status
	m.mu.Unlock()
}

func (m *FakeMessenger) ChatMemberStatus(int64, int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memberStatus, nil
}

func (m *FakeMessenger) DownloadFile(_ context.Context, fileID string, w io.Writer) error {
	data, ok := m.Files[fileID]
	if !ok {
		return fmt.Errorf("file %s not found", fileID)
	}
	_, err := w.Write(data)
	return err
}

func buttons(k tgbotapi.InlineKeyboardMarkup) int {
	n := 0
	for _, row := range k.InlineKeyboard {
		n += len(row)
	}
	return n
}
