package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jinbot/jinbot/pkg/audit"
	"github.com/jinbot/jinbot/pkg/likes"
)

func sender(u *tgbotapi.User) (int64, string) {
	if u == nil {
		return 0, ""
	}
	return u.ID, u.UserName
}

func auditLike(q *tgbotapi.CallbackQuery, filename string, r likes.Reaction, total int) {
	id, username := sender(q.From)
	var chatID int64
	if q.Message != nil && q.Message.Chat != nil {
		chatID = q.Message.Chat.ID
	}
	audit.Log(audit.LikeEvent{
		UserID:   id,
		Username: username,
		ChatID:   chatID,
		Meme:     filename,
		Reaction: r.String(),
		Total:    total,
	})
}

func auditMemeAdded(msg *tgbotapi.Message, name string, err error) {
	id, username := sender(msg.From)
	event := audit.MemeAddedEvent{
		UserID:   id,
		Username: username,
		ChatID:   msg.Chat.ID,
		Meme:     name,
		Success:  err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}

func auditMemeSent(chatID int64, name string, asDocument bool, err error) {
	event := audit.MemeSentEvent{
		ChatID:     chatID,
		Meme:       name,
		AsDocument: asDocument,
		Success:    err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}

func auditInterval(msg *tgbotapi.Message, minutes int, success bool) {
	id, username := sender(msg.From)
	audit.Log(audit.IntervalEvent{
		UserID:   id,
		Username: username,
		ChatID:   msg.Chat.ID,
		Minutes:  minutes,
		Success:  success,
	})
}

func auditGroupBound(chat *tgbotapi.Chat, source string) {
	audit.Log(audit.GroupBoundEvent{
		ChatID:    chat.ID,
		ChatTitle: chat.Title,
		Source:    source,
	})
}
