// Package tracked persists the series a user follows as a newline delimited list.
package tracked

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"slices"
	"strings"
	"sync"

	"github.com/kasuboski/simulcast/pkg/apperr"
	mio "github.com/kasuboski/simulcast/pkg/io"
	"github.com/kasuboski/simulcast/pkg/title"
)

// Store is the durable set of tracked series. Raw entries are kept as written so legacy
// episode qualified lines survive until they are removed; equality is always by normalized series.
type Store struct {
	mu         sync.RWMutex
	path       string
	normalizer title.Normalizer
	fs         mio.FileIO
	locker     *mio.Locker
	entries    []string
}

// New creates a store backed by path. Call Load before use.
func New(path string, normalizer title.Normalizer, fileIO mio.FileIO) *Store {
	if fileIO == nil {
		fileIO = &mio.MediaFileSystem{}
	}

	return &Store{
		path:       path,
		normalizer: normalizer,
		fs:         fileIO,
		locker:     mio.NewLocker(path),
	}
}

// Load reads the list from disk, replacing any in memory state. A missing file is an empty list.
func (s *Store) Load() ([]string, error) {
	b, err := s.fs.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Persistence("load tracked series", err)
	}

	entries := parse(b)

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	return s.Series(), nil
}

// Save replaces the stored list with names
func (s *Store) Save(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		key := s.key(n)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		next = append(next, key)
	}

	return s.commit(next)
}

// Add tracks the series of name. It reports false when the series was already tracked.
func (s *Store) Add(name string) (bool, error) {
	key := s.key(name)
	if key == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(key) >= 0 {
		return false, nil
	}

	if err := s.commit(append(slices.Clone(s.entries), key)); err != nil {
		return false, err
	}
	return true, nil
}

// Remove evicts every stored entry whose series matches name and returns how many were removed
func (s *Store) Remove(name string) (int, error) {
	key := s.key(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(s.entries), func(e string) bool {
		return s.key(e) == key
	})
	removed := len(s.entries) - len(next)
	if removed == 0 {
		return 0, nil
	}

	if err := s.commit(next); err != nil {
		return 0, err
	}
	return removed, nil
}

// Series returns the normalized tracked series in insertion order without duplicates
func (s *Store) Series() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.entries))
	seen := make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		key := s.key(e)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// Contains reports whether the series of rawTitle is tracked
func (s *Store) Contains(rawTitle string) bool {
	key := s.key(rawTitle)
	if key == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(key) >= 0
}

func (s *Store) key(name string) string {
	return s.normalizer.Normalize(name).Key()
}

func (s *Store) indexOf(key string) int {
	return slices.IndexFunc(s.entries, func(e string) bool {
		return s.key(e) == key
	})
}

// commit writes next and only then swaps it in. Callers hold mu.
func (s *Store) commit(next []string) error {
	var buf bytes.Buffer
	for _, e := range next {
		buf.WriteString(e)
		buf.WriteByte('\n')
	}

	err := s.locker.WithLock(func() error {
		return s.fs.WriteFileAtomic(s.path, buf.Bytes(), 0o644)
	})
	if err != nil {
		return apperr.Persistence("save tracked series", err)
	}

	s.entries = next
	return nil
}

func parse(b []byte) []string {
	var entries []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	return entries
}
