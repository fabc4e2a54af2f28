package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/kasuboski/simulcast/pkg/apperr"
	mio "github.com/kasuboski/simulcast/pkg/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolder_Files(t *testing.T) {
	fsys := fstest.MapFS{
		"[SubsPlease] Show - 05 (1080p) [ABCD].mkv": {},
		"Other - 01.MP4":                            {},
		"notes.txt":                                 {},
		"Show - 04.mkv.part":                        {},
		".hidden.mkv":                               {},
		".incomplete/Show - 06.mkv":                 {},
		"Batch/Another - 02.mkv":                    {},
		"Batch/cover.jpg":                           {},
	}

	l := NewFromFS("/downloads", fsys, nil)
	files, err := l.Files(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Batch/Another - 02.mkv",
		"Other - 01.MP4",
		"[SubsPlease] Show - 05 (1080p) [ABCD].mkv",
	}, files)
}

func TestFolder_FilesEmpty(t *testing.T) {
	l := New(t.TempDir(), nil)
	files, err := l.Files(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFolder_FilesMissingDir(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "missing"), nil)
	_, err := l.Files(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsPersistence(err))
}

func TestFolder_Remove(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Batch"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Show - 05.mkv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Batch", "Other - 01.mkv"), []byte("x"), 0o644))

	l := New(dir, &mio.MediaFileSystem{})
	ctx := context.Background()

	require.NoError(t, l.Remove(ctx, "Show - 05.mkv"))
	require.NoError(t, l.Remove(ctx, "Batch/Other - 01.mkv"))

	files, err := l.Files(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	err = l.Remove(ctx, "Show - 05.mkv")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestFolder_RemoveOutsideFolder(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(filepath.Dir(dir), "outside.mkv")

	l := New(dir, nil)
	for _, name := range []string{"../outside.mkv", outside, "", "."} {
		err := l.Remove(context.Background(), name)
		require.Error(t, err, name)
		assert.True(t, apperr.IsNotFound(err), name)
	}
}

func TestFolder_Watch(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- l.Watch(ctx, 20*time.Millisecond, func() { changed <- struct{}{} })
	}()

	// give the watcher time to register
	time.Sleep(50 * time.Millisecond)
	for i := range 3 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Show - 0"+string(rune('1'+i))+".mkv"), []byte("x"), 0o644))
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
