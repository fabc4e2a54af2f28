package io

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

var _ FileIO = (*MediaFileSystem)(nil)

// MediaFileSystem is the default implementation of file io using the os package
type MediaFileSystem struct{}

// Stat is a wrapper around os.Stat
func (o *MediaFileSystem) Stat(target string) (os.FileInfo, error) {
	return os.Stat(target)
}

// ReadFile is a wrapper around os.ReadFile
func (o *MediaFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Remove is a wrapper around os.Remove
func (o *MediaFileSystem) Remove(name string) error {
	return os.Remove(name)
}

// MkdirAll is a wrapper around os.MkdirAll
func (o *MediaFileSystem) MkdirAll(path string, mode os.FileMode) error {
	return os.MkdirAll(path, mode)
}

// WalkDir is a wrapper around fs.WalkDir
func (o *MediaFileSystem) WalkDir(fsys fs.FS, root string, fn fs.WalkDirFunc) error {
	return fs.WalkDir(fsys, root, fn)
}

// WriteFileAtomic writes data to a temporary file in the target directory and renames it over name,
// so readers only ever observe the previous or the new content.
func (o *MediaFileSystem) WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	return WriteFileAtomic(name, data, perm)
}

// WriteFileAtomic is the package level implementation of MediaFileSystem.WriteFileAtomic
func WriteFileAtomic(name string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(name)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err = os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Locker serializes writers of a single path across goroutines and processes
// using an advisory lock file next to it.
type Locker struct {
	mu   sync.Mutex
	lock *flock.Flock
}

// NewLocker returns a Locker guarding path via path + ".lock"
func NewLocker(path string) *Locker {
	return &Locker{lock: flock.New(path + ".lock")}
}

// WithLock runs fn while holding the exclusive lock.
func (l *Locker) WithLock(fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.lock.Path(), err)
	}

	fnErr := fn()
	if err := l.lock.Unlock(); err != nil {
		return errors.Join(fnErr, fmt.Errorf("release lock %s: %w", l.lock.Path(), err))
	}

	return fnErr
}
