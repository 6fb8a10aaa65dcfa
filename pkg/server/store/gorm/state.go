package gorm

import (
	"github.com/jinbot/jinbot/pkg/server/store"

	"gorm.io/gorm"
)

// Ensure StateStore implements store.StateStore
var _ store.StateStore = (*StateStore)(nil)

// StateStore bundles the GORM stores into a store.StateStore
type StateStore struct {
	*LikesStore
	*GroupStore
	*HealthStore

	db *gorm.DB
}

// NewStateStore creates a StateStore sharing one connection
func NewStateStore(db *gorm.DB) *StateStore {
	return &StateStore{
		LikesStore:  NewLikesStore(db),
		GroupStore:  NewGroupStore(db),
		HealthStore: NewHealthStore(db),
		db:          db,
	}
}

// Close closes the underlying connection pool
func (s *StateStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
