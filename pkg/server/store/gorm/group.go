package gorm

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jinbot/jinbot/pkg/model"
	"github.com/jinbot/jinbot/pkg/server/store"

	"gorm.io/gorm"
)

// Ensure GroupStore implements store.GroupStore
var _ store.GroupStore = (*GroupStore)(nil)

// GroupStore implements store.GroupStore on the settings table
type GroupStore struct {
	db *gorm.DB
}

// NewGroupStore creates a new GroupStore
func NewGroupStore(db *gorm.DB) *GroupStore {
	return &GroupStore{db: db}
}

// LoadGroupID returns the bound group chat id
func (s *GroupStore) LoadGroupID() (int64, error) {
	var setting model.Setting
	tx := s.db.Where("key = ?", model.SettingGroupID).First(&setting)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return 0, store.ErrGroupNotSet
		}
		return 0, tx.Error
	}

	id, err := strconv.ParseInt(setting.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt group id %q: %w", setting.Value, err)
	}
	return id, nil
}

// SaveGroupID upserts the group chat id
func (s *GroupStore) SaveGroupID(chatID int64) error {
	return s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		model.SettingGroupID, strconv.FormatInt(chatID, 10),
	).Error
}
