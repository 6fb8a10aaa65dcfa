package meme

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// RecentWindow is how many recent picks random selection avoids
const RecentWindow = 5

var (
	// ErrNoMemes is returned by Next when the library is empty
	ErrNoMemes = errors.New("no memes available")

	// ErrUnsupportedFile is returned by Add for names without an image extension
	ErrUnsupportedFile = errors.New("unsupported file type")
)

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// IsAllowed reports whether name has a supported image extension
func IsAllowed(name string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(name))]
}

// Meme is one image file in the library
type Meme struct {
	path string
}

// Name is the file name, which is also the key reactions are stored under
func (m Meme) Name() string {
	return filepath.Base(m.path)
}

// Path is the full path to the file
func (m Meme) Path() string {
	return m.path
}

// Open opens the image for reading
func (m Meme) Open() (*os.File, error) {
	return os.Open(m.path)
}

// Library is the set of memes in one directory
type Library struct {
	dir    string
	logger zerolog.Logger

	mu     sync.Mutex
	memes  []string
	index  int
	recent []string
	rng    *rand.Rand
}

// Option configures a Library
type Option func(*Library)

// WithRand sets the random source used for random picks
func WithRand(r *rand.Rand) Option {
	return func(l *Library) {
		l.rng = r
	}
}

// NewLibrary creates a library over dir, creating dir if needed, and
// performs the initial scan.
func NewLibrary(dir string, logger zerolog.Logger, opts ...Option) (*Library, error) {
	l := &Library{
		dir:    dir,
		logger: logger,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create meme directory %s: %w", dir, err)
	}
	if _, err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Dir returns the library directory
func (l *Library) Dir() string {
	return l.dir
}

// Reload rescans the directory and returns the number of memes found.
// The sequential position is kept.
func (l *Library) Reload() (int, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read meme directory %s: %w", l.dir, err)
	}

	var memes []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !IsAllowed(entry.Name()) {
			continue
		}
		memes = append(memes, filepath.Join(l.dir, entry.Name()))
	}
	sort.Strings(memes)

	l.mu.Lock()
	l.memes = memes
	l.mu.Unlock()

	l.logger.Info().Int("count", len(memes)).Msgf("Loaded %d memes.", len(memes))
	return len(memes), nil
}

// Len returns the number of memes
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.memes)
}

// List returns all memes in order
func (l *Library) List() []Meme {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Meme, len(l.memes))
	for i, p := range l.memes {
		out[i] = Meme{path: p}
	}
	return out
}

// Next selects the next meme to post. Sequential selection walks the
// sorted list round-robin. Random selection avoids the last RecentWindow
// picks, starting over once every meme is recent.
func (l *Library) Next(randomize bool) (Meme, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.memes) == 0 {
		l.logger.Warn().Msg("No memes available")
		return Meme{}, ErrNoMemes
	}

	var choice string
	if randomize {
		candidates := make([]string, 0, len(l.memes))
		for _, m := range l.memes {
			if !l.isRecent(m) {
				candidates = append(candidates, m)
			}
		}
		if len(candidates) == 0 {
			l.recent = l.recent[:0]
			candidates = append(candidates, l.memes...)
		}
		choice = candidates[l.rng.IntN(len(candidates))]
	} else {
		choice = l.memes[l.index%len(l.memes)]
		l.index++
	}

	l.recent = append(l.recent, choice)
	if len(l.recent) > RecentWindow {
		l.recent = l.recent[len(l.recent)-RecentWindow:]
	}
	return Meme{path: choice}, nil
}

func (l *Library) isRecent(path string) bool {
	for _, r := range l.recent {
		if r == path {
			return true
		}
	}
	return false
}

// Add stores a new meme under the base of name and rescans the library
func (l *Library) Add(name string, r io.Reader) (Meme, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || !IsAllowed(name) {
		return Meme{}, ErrUnsupportedFile
	}

	path := filepath.Join(l.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return Meme{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return Meme{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Meme{}, err
	}

	if _, err := l.Reload(); err != nil {
		return Meme{}, err
	}
	return Meme{path: path}, nil
}
