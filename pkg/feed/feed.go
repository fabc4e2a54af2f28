// Package feed fetches release feeds and yields normalized entries.
package feed

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/kasuboski/simulcast/pkg/apperr"
	mhttp "github.com/kasuboski/simulcast/pkg/http"
	"github.com/kasuboski/simulcast/pkg/logger"
	"github.com/kasuboski/simulcast/pkg/title"
	"github.com/mmcdole/gofeed"
	"github.com/moistari/rls"
	"go.uber.org/zap"
)

const (
	DefaultURL = "https://subsplease.org/rss/?r=1080"

	maxFeedBytes = 8 << 20
)

// Entry is a single feed item
type Entry struct {
	Raw        string      `json:"raw"`
	Link       string      `json:"link"`
	Title      title.Title `json:"title"`
	Resolution string      `json:"resolution,omitempty"`
	Published  time.Time   `json:"published,omitzero"`
}

type item struct {
	raw       string
	link      string
	published time.Time
}

// Snapshot is the complete result of one poll
type Snapshot struct {
	normalizer title.Normalizer
	items      []item
}

// All yields every entry, normalizing again on each iteration
func (s Snapshot) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, it := range s.items {
			if !yield(s.entry(it)) {
				return
			}
		}
	}
}

// Find returns the entry whose raw title is raw
func (s Snapshot) Find(raw string) (Entry, bool) {
	for _, it := range s.items {
		if it.raw == raw {
			return s.entry(it), true
		}
	}
	return Entry{}, false
}

// Len is the number of entries
func (s Snapshot) Len() int {
	return len(s.items)
}

func (s Snapshot) entry(it item) Entry {
	return Entry{
		Raw:        it.raw,
		Link:       it.link,
		Title:      s.normalizer.Normalize(it.raw),
		Resolution: rls.ParseString(it.raw).Resolution,
		Published:  it.published,
	}
}

// Ingestor polls feeds. Every poll is a full fetch; no state is kept between polls.
type Ingestor struct {
	http       mhttp.HTTPClient
	normalizer title.Normalizer
}

func New(httpClient mhttp.HTTPClient, normalizer title.Normalizer) *Ingestor {
	return &Ingestor{
		http:       httpClient,
		normalizer: normalizer,
	}
}

// Poll fetches and parses the feed at url. On failure the snapshot is empty.
func (i *Ingestor) Poll(ctx context.Context, url string) (Snapshot, error) {
	log := logger.FromCtx(ctx)
	empty := Snapshot{normalizer: i.normalizer}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return empty, apperr.Transport("build feed request", err)
	}

	resp, err := i.http.Do(req)
	if err != nil {
		return empty, apperr.Transport("fetch feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return empty, apperr.Transport("fetch feed", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	parsed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return empty, apperr.Transport("parse feed", err)
	}

	items := make([]item, 0, len(parsed.Items))
	for _, fi := range parsed.Items {
		if fi == nil || fi.Title == "" {
			continue
		}
		items = append(items, item{
			raw:       fi.Title,
			link:      link(fi),
			published: published(fi),
		})
	}

	log.Debugw("polled feed", zap.String("url", url), zap.Int("entries", len(items)))
	return Snapshot{normalizer: i.normalizer, items: items}, nil
}

func link(fi *gofeed.Item) string {
	if fi.Link != "" {
		return fi.Link
	}
	for _, e := range fi.Enclosures {
		if e != nil && e.URL != "" {
			return e.URL
		}
	}
	return ""
}

func published(fi *gofeed.Item) time.Time {
	switch {
	case fi.PublishedParsed != nil:
		return fi.PublishedParsed.UTC()
	case fi.UpdatedParsed != nil:
		return fi.UpdatedParsed.UTC()
	default:
		return time.Time{}
	}
}
