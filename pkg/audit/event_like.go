package audit

import "fmt"

// LikeEvent records a reaction pressed on a posted meme
type LikeEvent struct {
	UserID   int64
	Username string
	ChatID   int64
	Meme     string
	Reaction string
	Total    int
}

func (e LikeEvent) MessageID() string {
	return "like"
}

func (e LikeEvent) Message() string {
	return fmt.Sprintf("%s reacted %s to %s (%d total)", userLabel(e.UserID, e.Username), e.Reaction, e.Meme, e.Total)
}

func (e LikeEvent) Severity() Severity {
	return SeverityInfo
}

func (e LikeEvent) Facility() int {
	return FacilityLocal0
}

func (e LikeEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDUser: userData(e.UserID, e.Username),
		SDIDChat: {
			"id": fmt.Sprint(e.ChatID),
		},
		SDIDMeme: {
			"name":     e.Meme,
			"reaction": e.Reaction,
			"total":    fmt.Sprint(e.Total),
		},
	}
}

func userLabel(id int64, username string) string {
	if username != "" {
		return "@" + username
	}
	return fmt.Sprintf("user %d", id)
}

func userData(id int64, username string) map[string]string {
	sd := map[string]string{"id": fmt.Sprint(id)}
	if username != "" {
		sd["username"] = username
	}
	return sd
}
