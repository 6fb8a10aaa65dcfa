package bolt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"github.com/jinbot/jinbot/pkg/server/store"
)

const (
	DefaultFileName = "jinbot.db"

	likesBucket    = "likes"
	settingsBucket = "settings"
	groupIDKey     = "group_id"
)

// Ensure Store implements store.StateStore
var _ store.StateStore = (*Store)(nil)

// Store implements store.StateStore using BoltDB
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the bolt database at dbPath
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db %s (is another jinbot using it?): %w", dbPath, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{likesBucket, settingsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// LoadLikes returns every meme's reactions
func (s *Store) LoadLikes() (map[string][]string, error) {
	likes := map[string][]string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(likesBucket)).ForEach(func(k, v []byte) error {
			var list []string
			if err := json.Unmarshal(v, &list); err != nil {
				return fmt.Errorf("corrupt likes for %q: %w", string(k), err)
			}
			likes[string(k)] = list
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return likes, nil
}

// AppendLike adds a reaction to the meme's list in a single transaction
func (s *Store) AppendLike(filename, reaction string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(likesBucket))

		var list []string
		if data := bucket.Get([]byte(filename)); data != nil {
			if err := json.Unmarshal(data, &list); err != nil {
				return fmt.Errorf("corrupt likes for %q: %w", filename, err)
			}
		}
		list = append(list, reaction)

		data, err := json.Marshal(list)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(filename), data)
	})
}

// LoadGroupID returns the bound group chat id
func (s *Store) LoadGroupID() (int64, error) {
	var id int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(settingsBucket)).Get([]byte(groupIDKey))
		if data == nil {
			return store.ErrGroupNotSet
		}
		parsed, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt group id %q: %w", string(data), err)
		}
		id = parsed
		return nil
	})
	return id, err
}

// SaveGroupID stores the group chat id
func (s *Store) SaveGroupID(chatID int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(groupIDKey), []byte(strconv.FormatInt(chatID, 10)))
	})
}

// CheckConnectivity verifies the database can be read
func (s *Store) CheckConnectivity() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(settingsBucket)) == nil {
			return fmt.Errorf("bucket %s missing", settingsBucket)
		}
		return nil
	})
}

// Close closes the BoltDB connection
func (s *Store) Close() error {
	return s.db.Close()
}
