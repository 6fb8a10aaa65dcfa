package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cucumber/godog"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	gormstore "github.com/jinbot/jinbot/pkg/server/store/gorm"
)

var updateCounter int64

func (s *StepsContext) registerBotSteps(sc *godog.ScenarioContext) {
	// Telegram update steps
	sc.Step(`^Telegram delivers the command "([^"]*)" in group (-?\d+)$`, s.telegramDeliversCommand)
	sc.Step(`^Telegram delivers the command "([^"]*)" from a member in group (-?\d+)$`, s.telegramDeliversCommandFromMember)
	sc.Step(`^Telegram delivers the message "([^"]*)" in group (-?\d+)$`, s.telegramDeliversMessage)
	sc.Step(`^Telegram delivers a "([^"]*)" callback in chat (-?\d+)$`, s.telegramDeliversCallback)

	// Bot assertion steps
	sc.Step(`^the bot should have sent the text "([^"]*)" to chat (-?\d+)$`, s.theBotShouldHaveSentText)
	sc.Step(`^the bot should have sent the photo "([^"]*)" to chat (-?\d+)$`, s.theBotShouldHaveSentPhoto)
	sc.Step(`^the bot should not have sent anything$`, s.theBotShouldNotHaveSentAnything)
	sc.Step(`^the last caption should be "([^"]*)"$`, s.theLastCaptionShouldBe)
	sc.Step(`^the schedule should be running$`, s.theScheduleShouldBeRunning)

	// Store assertion steps
	sc.Step(`^the stored group chat ID should be (-?\d+)$`, s.theStoredGroupChatIDShouldBe)
	sc.Step(`^the stored likes for "([^"]*)" should be "([^"]*)"$`, s.theStoredLikesShouldBe)
	sc.Step(`^an audit record "([^"]*)" should exist$`, s.anAuditRecordShouldExist)
}

func (s *StepsContext) theGroupChatIDIs(chatID int64) error {
	if s.instance != nil {
		return fmt.Errorf("the group must be set before the bot starts")
	}
	return gormstore.NewGroupStore(s.tc.DB).SaveGroupID(chatID)
}

func groupChat(chatID int64) *tgbotapi.Chat {
	return &tgbotapi.Chat{ID: chatID, Type: "supergroup", Title: "Meme Lovers"}
}

func sender() *tgbotapi.User {
	return &tgbotapi.User{ID: 7, FirstName: "Tester", UserName: "tester"}
}

func (s *StepsContext) deliver(update tgbotapi.Update) error {
	instance, err := s.bot()
	if err != nil {
		return err
	}
	update.UpdateID = int(atomic.AddInt64(&updateCounter, 1))

	body, err := json.Marshal(update)
	if err != nil {
		return err
	}
	path := strings.TrimPrefix(instance.WebhookURL(), instance.ServerURL)
	return s.do(http.MethodPost, path, "", body)
}

func (s *StepsContext) telegramDeliversCommand(text string, chatID int64) error {
	command, _, _ := strings.Cut(text, " ")
	return s.deliver(tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 1,
			From:      sender(),
			Chat:      groupChat(chatID),
			Date:      int(time.Now().Unix()),
			Text:      text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(command)},
			},
		},
	})
}

func (s *StepsContext) telegramDeliversCommandFromMember(text string, chatID int64) error {
	instance, err := s.bot()
	if err != nil {
		return err
	}
	instance.Messenger.SetMemberStatus("member")
	return s.telegramDeliversCommand(text, chatID)
}

func (s *StepsContext) telegramDeliversMessage(text string, chatID int64) error {
	return s.deliver(tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 2,
			From:      sender(),
			Chat:      groupChat(chatID),
			Date:      int(time.Now().Unix()),
			Text:      text,
		},
	})
}

func (s *StepsContext) telegramDeliversCallback(data string, chatID int64) error {
	return s.deliver(tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-1",
			From: sender(),
			Data: data,
			Message: &tgbotapi.Message{
				MessageID: 42,
				Chat:      groupChat(chatID),
			},
		},
	})
}

// Bot assertion steps

func (s *StepsContext) findSent(kind string, chatID int64, match func(SentMessage) bool) error {
	if s.instance == nil {
		return fmt.Errorf("the bot is not running")
	}
	sent := s.instance.Messenger.Sent()
	for _, msg := range sent {
		if msg.Kind == kind && msg.ChatID == chatID && match(msg) {
			return nil
		}
	}
	return fmt.Errorf("no %s sent to chat %d; sent: %+v", kind, chatID, sent)
}

func (s *StepsContext) theBotShouldHaveSentText(text string, chatID int64) error {
	return s.findSent("text", chatID, func(m SentMessage) bool { return m.Text == text })
}

func (s *StepsContext) theBotShouldHaveSentPhoto(name string, chatID int64) error {
	return s.findSent("photo", chatID, func(m SentMessage) bool { return m.File == name })
}

func (s *StepsContext) theBotShouldNotHaveSentAnything() error {
	if s.instance == nil {
		return nil
	}
	if sent := s.instance.Messenger.Sent(); len(sent) > 0 {
		return fmt.Errorf("expected nothing sent, got %+v", sent)
	}
	return nil
}

func (s *StepsContext) theLastCaptionShouldBe(caption string) error {
	if s.instance == nil {
		return fmt.Errorf("the bot is not running")
	}
	sent := s.instance.Messenger.Sent()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].Kind == "caption" {
			if sent[i].Text != caption {
				return fmt.Errorf("expected caption %q, got %q", caption, sent[i].Text)
			}
			return nil
		}
	}
	return fmt.Errorf("no caption was edited")
}

func (s *StepsContext) theScheduleShouldBeRunning() error {
	if s.instance == nil || !s.instance.Bot.Scheduled() {
		return fmt.Errorf("the post schedule is not running")
	}
	return nil
}

// Store assertion steps

func (s *StepsContext) theStoredGroupChatIDShouldBe(chatID int64) error {
	got, err := gormstore.NewGroupStore(s.tc.DB).LoadGroupID()
	if err != nil {
		return err
	}
	if got != chatID {
		return fmt.Errorf("expected group chat ID %d, got %d", chatID, got)
	}
	return nil
}

func (s *StepsContext) theStoredLikesShouldBe(filename, expected string) error {
	all, err := gormstore.NewLikesStore(s.tc.DB).LoadLikes()
	if err != nil {
		return err
	}
	if got := strings.Join(all[filename], ","); got != expected {
		return fmt.Errorf("expected likes %q for %s, got %q", expected, filename, got)
	}
	return nil
}

func (s *StepsContext) anAuditRecordShouldExist(msgID string) error {
	var count int64
	if err := s.tc.DB.Table("messages").Where("msgid = ?", msgID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no audit record with msgid %q", msgID)
	}
	return nil
}
