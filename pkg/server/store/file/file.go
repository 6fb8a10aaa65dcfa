package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jinbot/jinbot/pkg/server/store"
)

const (
	LikesFileName = "likes.json"
	GroupFileName = "group_id.txt"
)

// Ensure Store implements store.StateStore
var _ store.StateStore = (*Store)(nil)

// Store keeps state in two plain files: likes.json next to the memes and
// group_id.txt in the state directory.
type Store struct {
	likesPath string
	groupPath string
	logger    zerolog.Logger

	mu    sync.Mutex
	likes map[string][]string
}

// New creates a file-backed store. Neither file has to exist yet.
func New(memeDir, stateDir string, logger zerolog.Logger) *Store {
	return &Store{
		likesPath: filepath.Join(memeDir, LikesFileName),
		groupPath: filepath.Join(stateDir, GroupFileName),
		logger:    logger.With().Str("store", "file").Logger(),
		likes:     map[string][]string{},
	}
}

// LoadLikes reads likes.json. A missing file yields an empty map and a
// corrupt one is logged and replaced on the next write.
func (s *Store) LoadLikes() (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.likes = map[string][]string{}

	data, err := os.ReadFile(s.likesPath)
	if errors.Is(err, os.ErrNotExist) {
		return copyLikes(s.likes), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.likesPath, err)
	}

	var loaded map[string][]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn().Err(err).Str("path", s.likesPath).Msg("Failed loading likes data, starting fresh")
		return copyLikes(s.likes), nil
	}
	if loaded != nil {
		s.likes = loaded
	}
	s.logger.Info().Int("memes", len(s.likes)).Msg("Loaded likes data")
	return copyLikes(s.likes), nil
}

// AppendLike records a reaction and rewrites likes.json
func (s *Store) AppendLike(filename, reaction string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.likes[filename] = append(s.likes[filename], reaction)

	if err := os.MkdirAll(filepath.Dir(s.likesPath), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(s.likesPath), err)
	}
	data, err := json.Marshal(s.likes)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.likesPath, data); err != nil {
		return fmt.Errorf("failed to save likes data: %w", err)
	}
	return nil
}

// LoadGroupID reads group_id.txt
func (s *Store) LoadGroupID() (int64, error) {
	data, err := os.ReadFile(s.groupPath)
	if errors.Is(err, os.ErrNotExist) {
		return 0, store.ErrGroupNotSet
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", s.groupPath, err)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.groupPath).Msg("Failed to load group chat ID")
		return 0, store.ErrGroupNotSet
	}
	return id, nil
}

// SaveGroupID writes group_id.txt
func (s *Store) SaveGroupID(chatID int64) error {
	if err := os.MkdirAll(filepath.Dir(s.groupPath), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(s.groupPath), err)
	}
	if err := writeFileAtomic(s.groupPath, []byte(strconv.FormatInt(chatID, 10))); err != nil {
		return fmt.Errorf("failed to save group chat ID: %w", err)
	}
	return nil
}

// CheckConnectivity verifies the state directory is usable
func (s *Store) CheckConnectivity() error {
	info, err := os.Stat(filepath.Dir(s.groupPath))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.groupPath))
	}
	return nil
}

// Close is a no-op for the file store
func (s *Store) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func copyLikes(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}
