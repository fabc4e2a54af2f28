// Package title turns raw release titles such as "[SubsPlease] Show Name - 05 (1080p) [ABCD1234].mkv"
// into a series, an episode and a release group.
package title

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultTag is the release group prefix used by the default feed
	DefaultTag = "[SubsPlease]"

	separator = " - "
)

// Title is the normalized form of a raw release title
type Title struct {
	Series       string `json:"series"`
	Episode      string `json:"episode"`
	ReleaseGroup string `json:"releaseGroup,omitempty"`
}

// Key is the value titles are grouped by in the metadata cache and the tracked list
func (t Title) Key() string {
	return t.Series
}

// Normalizer parses raw release titles
type Normalizer struct {
	tag string
}

// New creates a Normalizer that strips tag as an exact substring. An empty tag disables the exact strip;
// leading bracket groups are still removed.
func New(tag string) Normalizer {
	return Normalizer{tag: tag}
}

// Tag is the exact release group tag stripped by the normalizer
func (n Normalizer) Tag() string {
	return n.tag
}

// Normalize parses raw into a Title. It never fails: a title without the " - " separator yields an empty episode.
func (n Normalizer) Normalize(raw string) Title {
	s := strings.TrimSpace(norm.NFC.String(raw))

	var t Title
	// removing the tag can join its neighbours into a new one
	for n.tag != "" && strings.Contains(s, n.tag) {
		s = strings.TrimSpace(strings.ReplaceAll(s, n.tag, ""))
		t.ReleaseGroup = bracketContent(n.tag)
	}

	for strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			break
		}

		if t.ReleaseGroup == "" {
			t.ReleaseGroup = s[1:end]
		}
		s = strings.TrimSpace(s[end+1:])
	}

	series, episode, found := strings.Cut(s, separator)
	t.Series = strings.TrimSpace(series)
	if !found {
		return t
	}

	t.Episode = episodeField(episode)
	return t
}

// episodeField keeps what precedes the first bracket group, so "05 (1080p) [ABCD1234].mkv" becomes "05 (1080p)"
func episodeField(s string) string {
	s = TrimExt(strings.TrimSpace(s))
	if i := strings.Index(s, "["); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// TrimExt drops a file extension but keeps dots inside titles such as "Dr. Stone - 05"
func TrimExt(name string) string {
	ext := path.Ext(name)
	if ext == "" || len(ext) > 5 || strings.ContainsAny(ext, " ]/") {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

func bracketContent(tag string) string {
	return strings.TrimSuffix(strings.TrimPrefix(tag, "["), "]")
}

// SafeFilename keeps letters, digits, spaces, hyphens and underscores and drops everything else.
// Trailing whitespace is trimmed.
func SafeFilename(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}
