package gorm

import (
	"github.com/jinbot/jinbot/pkg/model"
	"github.com/jinbot/jinbot/pkg/server/store"

	"gorm.io/gorm"
)

// Ensure LikesStore implements store.LikesStore
var _ store.LikesStore = (*LikesStore)(nil)

// LikesStore implements store.LikesStore using GORM
type LikesStore struct {
	db *gorm.DB
}

// NewLikesStore creates a new LikesStore
func NewLikesStore(db *gorm.DB) *LikesStore {
	return &LikesStore{db: db}
}

// LoadLikes returns every reaction grouped by meme, oldest first.
func (s *LikesStore) LoadLikes() (map[string][]string, error) {
	var rows []model.Like
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	likes := make(map[string][]string)
	for _, row := range rows {
		likes[row.Filename] = append(likes[row.Filename], row.Reaction)
	}
	return likes, nil
}

// AppendLike inserts one reaction row.
func (s *LikesStore) AppendLike(filename, reaction string) error {
	return s.db.Exec(
		`INSERT INTO likes (filename, reaction) VALUES (?, ?)`,
		filename, reaction,
	).Error
}
