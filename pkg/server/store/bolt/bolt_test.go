package bolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinbot/jinbot/pkg/server/store"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", DefaultFileName)
	s, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestLikes(t *testing.T) {
	s, _ := newTestStore(t)

	likes, err := s.LoadLikes()
	require.NoError(t, err)
	assert.Empty(t, likes)

	require.NoError(t, s.AppendLike("cat.jpg", "heart"))
	require.NoError(t, s.AppendLike("cat.jpg", "love"))
	require.NoError(t, s.AppendLike("dog.png", "haha"))

	likes, err = s.LoadLikes()
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"cat.jpg": {"heart", "love"},
		"dog.png": {"haha"},
	}, likes)
}

func TestGroupIDPersistsAcrossReopen(t *testing.T) {
	s, path := newTestStore(t)

	_, err := s.LoadGroupID()
	assert.ErrorIs(t, err, store.ErrGroupNotSet)

	require.NoError(t, s.SaveGroupID(-100987))
	require.NoError(t, s.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	id, err := reopened.LoadGroupID()
	require.NoError(t, err)
	assert.Equal(t, int64(-100987), id)
}

func TestCheckConnectivity(t *testing.T) {
	s, _ := newTestStore(t)
	assert.NoError(t, s.CheckConnectivity())
}
