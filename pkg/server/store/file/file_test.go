package file

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinbot/jinbot/pkg/server/store"
)

func TestLikesRoundTrip(t *testing.T) {
	memeDir := t.TempDir()
	s := New(memeDir, t.TempDir(), zerolog.Nop())

	likes, err := s.LoadLikes()
	require.NoError(t, err)
	assert.Empty(t, likes)

	require.NoError(t, s.AppendLike("cat.jpg", "heart"))
	require.NoError(t, s.AppendLike("cat.jpg", "heart"))
	require.NoError(t, s.AppendLike("dog.png", "haha"))

	data, err := os.ReadFile(filepath.Join(memeDir, LikesFileName))
	require.NoError(t, err)
	assert.JSONEq(t, `{"cat.jpg":["heart","heart"],"dog.png":["haha"]}`, string(data))

	reopened := New(memeDir, t.TempDir(), zerolog.Nop())
	likes, err = reopened.LoadLikes()
	require.NoError(t, err)
	assert.Equal(t, []string{"heart", "heart"}, likes["cat.jpg"])
	assert.Equal(t, []string{"haha"}, likes["dog.png"])
}

func TestLoadLikesCorruptFileStartsFresh(t *testing.T) {
	memeDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(memeDir, LikesFileName), []byte("{not json"), 0644))

	var logs bytes.Buffer
	s := New(memeDir, t.TempDir(), zerolog.New(&logs))
	likes, err := s.LoadLikes()
	require.NoError(t, err)
	assert.Empty(t, likes)
	assert.Contains(t, logs.String(), "starting fresh")
	assert.Contains(t, logs.String(), `"store":"file"`)

	require.NoError(t, s.AppendLike("a.gif", "love"))
	likes, err = s.LoadLikes()
	require.NoError(t, err)
	assert.Equal(t, []string{"love"}, likes["a.gif"])
}

func TestLoadLikesReturnsCopy(t *testing.T) {
	s := New(t.TempDir(), t.TempDir(), zerolog.Nop())
	require.NoError(t, s.AppendLike("a.gif", "love"))

	likes, err := s.LoadLikes()
	require.NoError(t, err)
	likes["a.gif"][0] = "mutated"

	again, err := s.LoadLikes()
	require.NoError(t, err)
	assert.Equal(t, []string{"love"}, again["a.gif"])
}

func TestGroupID(t *testing.T) {
	stateDir := t.TempDir()
	s := New(t.TempDir(), stateDir, zerolog.Nop())

	_, err := s.LoadGroupID()
	assert.ErrorIs(t, err, store.ErrGroupNotSet)

	require.NoError(t, s.SaveGroupID(-1001234567890))

	data, err := os.ReadFile(filepath.Join(stateDir, GroupFileName))
	require.NoError(t, err)
	assert.Equal(t, "-1001234567890", string(data))

	id, err := s.LoadGroupID()
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234567890), id)
}

func TestGroupIDCorruptFile(t *testing.T) {
	stateDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, GroupFileName), []byte("group!"), 0644))

	var logs bytes.Buffer
	s := New(t.TempDir(), stateDir, zerolog.New(&logs))
	_, err := s.LoadGroupID()
	assert.ErrorIs(t, err, store.ErrGroupNotSet)
	assert.Contains(t, logs.String(), "Failed to load group chat ID")
}

func TestGroupIDTrimsWhitespace(t *testing.T) {
	stateDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, GroupFileName), []byte(" 42\n"), 0644))

	s := New(t.TempDir(), stateDir, zerolog.Nop())
	id, err := s.LoadGroupID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestCheckConnectivity(t *testing.T) {
	s := New(t.TempDir(), t.TempDir(), zerolog.Nop())
	assert.NoError(t, s.CheckConnectivity())

	missing := New(t.TempDir(), filepath.Join(t.TempDir(), "nope"), zerolog.Nop())
	assert.Error(t, missing.CheckConnectivity())
}
