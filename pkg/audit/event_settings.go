package audit

import "fmt"

// IntervalEvent records a /setinterval attempt
type IntervalEvent struct {
	UserID   int64
	Username string
	ChatID   int64
	Minutes  int
	Success  bool
}

func (e IntervalEvent) MessageID() string {
	return "interval"
}

func (e IntervalEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s set the post interval to %d minute(s)", userLabel(e.UserID, e.Username), e.Minutes)
	}
	return fmt.Sprintf("%s tried to set the post interval without admin rights", userLabel(e.UserID, e.Username))
}

func (e IntervalEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e IntervalEvent) Facility() int {
	return FacilityLocal0
}

func (e IntervalEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDUser: userData(e.UserID, e.Username),
		SDIDChat: {
			"id": fmt.Sprint(e.ChatID),
		},
		SDIDAction: {
			"operation": "setinterval",
			"result":    result(e.Success),
		},
	}
	if e.Success {
		sd[SDIDAction]["minutes"] = fmt.Sprint(e.Minutes)
	}
	return sd
}

// GroupBoundEvent records the bot binding to a group chat
type GroupBoundEvent struct {
	ChatID    int64
	ChatTitle string
	// Source is what bound the group: "init_group", "getgroupid" or "message"
	Source string
}

func (e GroupBoundEvent) MessageID() string {
	return "group"
}

func (e GroupBoundEvent) Message() string {
	if e.ChatTitle != "" {
		return fmt.Sprintf("bound to group %d (%s) via %s", e.ChatID, e.ChatTitle, e.Source)
	}
	return fmt.Sprintf("bound to group %d via %s", e.ChatID, e.Source)
}

func (e GroupBoundEvent) Severity() Severity {
	return SeverityNotice
}

func (e GroupBoundEvent) Facility() int {
	return FacilityLocal0
}

func (e GroupBoundEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDChat: {
			"id": fmt.Sprint(e.ChatID),
		},
		SDIDAction: {
			"operation": "bind",
			"source":    e.Source,
		},
	}
	if e.ChatTitle != "" {
		sd[SDIDChat]["title"] = e.ChatTitle
	}
	return sd
}
