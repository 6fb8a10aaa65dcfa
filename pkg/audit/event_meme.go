package audit

import "fmt"

// MemeAddedEvent records a meme uploaded through /add
type MemeAddedEvent struct {
	UserID       int64
	Username     string
	ChatID       int64
	Meme         string
	Success      bool
	ErrorMessage string
}

func (e MemeAddedEvent) MessageID() string {
	return "meme-add"
}

func (e MemeAddedEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s added meme %s", userLabel(e.UserID, e.Username), e.Meme)
	}
	msg := fmt.Sprintf("%s tried to add meme %s", userLabel(e.UserID, e.Username), e.Meme)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e MemeAddedEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e MemeAddedEvent) Facility() int {
	return FacilityLocal0
}

func (e MemeAddedEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDUser: userData(e.UserID, e.Username),
		SDIDChat: {
			"id": fmt.Sprint(e.ChatID),
		},
		SDIDMeme: {
			"name": e.Meme,
		},
		SDIDAction: {
			"operation": "add",
			"result":    result(e.Success),
		},
	}
}

// MemeSentEvent records a meme posted to a chat
type MemeSentEvent struct {
	ChatID       int64
	Meme         string
	AsDocument   bool
	Success      bool
	ErrorMessage string
}

func (e MemeSentEvent) MessageID() string {
	return "meme-send"
}

func (e MemeSentEvent) Message() string {
	if e.Success {
		kind := "photo"
		if e.AsDocument {
			kind = "document"
		}
		return fmt.Sprintf("sent %s to chat %d as %s", e.Meme, e.ChatID, kind)
	}
	msg := fmt.Sprintf("failed to send %s to chat %d", e.Meme, e.ChatID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e MemeSentEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityError
}

func (e MemeSentEvent) Facility() int {
	return FacilityLocal0
}

func (e MemeSentEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDChat: {
			"id": fmt.Sprint(e.ChatID),
		},
		SDIDMeme: {
			"name": e.Meme,
		},
		SDIDAction: {
			"operation": "send",
			"result":    result(e.Success),
		},
	}
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
