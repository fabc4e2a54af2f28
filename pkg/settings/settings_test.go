package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kasuboski/simulcast/pkg/apperr"
	mio "github.com/kasuboski/simulcast/pkg/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = Settings{
	DownloadFolder: "/downloads",
	FeedURL:        "https://subsplease.org/rss/?r=1080",
	ClientHost:     "http://127.0.0.1:8080",
	ClientUser:     "admin",
	ClientPassword: "adminadmin",
}

func TestStore_LoadDefaults(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "settings.yaml"), defaults)
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, defaults, got)
	assert.Equal(t, defaults, s.Get())
}

func TestStore_LoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feedUrl: https://subsplease.org/rss/?r=720\n"), 0o600))

	s := New(path, defaults)
	got, err := s.Load()
	require.NoError(t, err)

	want := defaults
	want.FeedURL = "https://subsplease.org/rss/?r=720"
	assert.Equal(t, want, got)
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feedUrl: [unterminated\n"), 0o600))

	s := New(path, defaults)
	_, err := s.Load()
	require.Error(t, err)
	assert.True(t, apperr.IsPersistence(err))
}

func TestStore_UpdateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	s := New(path, defaults)
	_, err := s.Load()
	require.NoError(t, err)

	next := defaults
	next.DownloadFolder = "/mnt/anime"
	next.ClientPassword = "secret"
	require.NoError(t, s.Update(next))
	assert.Equal(t, next, s.Get())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded := New(path, Settings{})
	got, err := reloaded.Load()
	require.NoError(t, err)
	assert.Equal(t, next, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestStore_UpdateInvalid(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "settings.yaml"), defaults)

	next := defaults
	next.FeedURL = "not a url"
	require.Error(t, s.Update(next))
	assert.Equal(t, defaults, s.Get())
}

func TestStore_UpdateWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	// the parent of the settings file is a regular file
	s := New(filepath.Join(blocker, "settings.yaml"), defaults)

	next := defaults
	next.ClientUser = "other"
	err := s.Update(next)
	require.Error(t, err)
	assert.True(t, apperr.IsPersistence(err))
	assert.Equal(t, defaults, s.Get())
}

type failingWriteIO struct {
	mio.MediaFileSystem
}

func (failingWriteIO) WriteFileAtomic(string, []byte, os.FileMode) error {
	return errors.New("read-only file system")
}

func TestStore_UpdateWritesThroughFileIO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s := New(path, defaults, WithFileIO(&failingWriteIO{}))

	next := defaults
	next.ClientUser = "other"
	err := s.Update(next)
	require.Error(t, err)
	assert.True(t, apperr.IsPersistence(err))
	assert.Equal(t, defaults, s.Get())

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSettings_Set(t *testing.T) {
	var s Settings
	for _, key := range Keys {
		require.NoError(t, s.Set(key, key+"-value"))
	}
	assert.Equal(t, Settings{
		DownloadFolder: "downloadFolder-value",
		FeedURL:        "feedUrl-value",
		ClientHost:     "clientHost-value",
		ClientUser:     "clientUser-value",
		ClientPassword: "clientPassword-value",
	}, s)

	err := s.Set("theme", "dark")
	assert.True(t, apperr.IsNotFound(err))
}

func TestSettings_Redacted(t *testing.T) {
	assert.Equal(t, "********", defaults.Redacted().ClientPassword)
	assert.Equal(t, "adminadmin", defaults.ClientPassword)
	assert.Empty(t, Settings{}.Redacted().ClientPassword)
}
