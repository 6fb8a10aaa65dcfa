package store

import "errors"

// ErrGroupNotSet is returned when no group chat has been bound yet
var ErrGroupNotSet = errors.New("group chat id not set")

// GroupStore persists the id of the group chat memes are posted to
type GroupStore interface {
	// LoadGroupID returns the bound chat id or ErrGroupNotSet.
	LoadGroupID() (int64, error)

	// SaveGroupID binds the bot to a chat, replacing any previous id.
	SaveGroupID(chatID int64) error
}
