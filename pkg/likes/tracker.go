package likes

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jinbot/jinbot/pkg/server/store"
)

// CaptionPrefix starts every meme caption
const CaptionPrefix = "👍 Likes: "

const noLikesText = "No likes yet. Be the first!"

// Tracker holds every meme's reactions in memory and writes each new
// reaction through to a store. The same user may react any number of times.
type Tracker struct {
	store  store.LikesStore
	logger zerolog.Logger

	mu    sync.RWMutex
	likes map[string][]string
}

// NewTracker creates a tracker backed by s. Call Load before use.
func NewTracker(s store.LikesStore, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store:  s,
		logger: logger,
		likes:  map[string][]string{},
	}
}

// Load replaces the in-memory state with the store's contents
func (t *Tracker) Load() error {
	loaded, err := t.store.LoadLikes()
	if err != nil {
		return fmt.Errorf("failed to load likes: %w", err)
	}
	if loaded == nil {
		loaded = map[string][]string{}
	}

	t.mu.Lock()
	t.likes = loaded
	t.mu.Unlock()
	return nil
}

// Add records a reaction and returns the meme's updated list. A store
// failure is logged; the in-memory state still counts the reaction.
func (t *Tracker) Add(filename string, r Reaction) []string {
	t.mu.Lock()
	t.likes[filename] = append(t.likes[filename], r.String())
	list := append([]string(nil), t.likes[filename]...)
	t.mu.Unlock()

	if err := t.store.AppendLike(filename, r.String()); err != nil {
		t.logger.Error().Err(err).Str("meme", filename).Msg("Failed to save likes data")
	}
	return list
}

// Get returns a copy of the meme's reactions
func (t *Tracker) Get(filename string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.likes[filename]...)
}

// Counts tallies the known reactions in list
func Counts(list []string) map[Reaction]int {
	counts := make(map[Reaction]int, len(ReactionValues()))
	for _, s := range list {
		r, ok := ParseReaction(s)
		if !ok {
			continue
		}
		counts[r]++
	}
	return counts
}

// Format renders reaction counts as "❤️ 2 | 🔥 1 (Total: 3)". Unknown
// reactions are not counted.
func Format(list []string) string {
	counts := Counts(list)

	var parts []string
	total := 0
	for _, r := range ReactionValues() {
		if n := counts[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", r.Emoji(), n))
			total += n
		}
	}
	if len(parts) == 0 {
		return noLikesText
	}
	return fmt.Sprintf("%s (Total: %d)", strings.Join(parts, " | "), total)
}

// Caption is the full photo caption for a meme with the given reactions
func Caption(list []string) string {
	return CaptionPrefix + Format(list)
}
