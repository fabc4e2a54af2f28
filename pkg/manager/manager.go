// Package manager wires feed ingestion, tracking, metadata, downloads and the schedule together.
package manager

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/kasuboski/simulcast/pkg/apperr"
	"github.com/kasuboski/simulcast/pkg/cache"
	"github.com/kasuboski/simulcast/pkg/download"
	"github.com/kasuboski/simulcast/pkg/feed"
	mio "github.com/kasuboski/simulcast/pkg/io"
	"github.com/kasuboski/simulcast/pkg/library"
	"github.com/kasuboski/simulcast/pkg/logger"
	"github.com/kasuboski/simulcast/pkg/metadata"
	"github.com/kasuboski/simulcast/pkg/reconcile"
	"github.com/kasuboski/simulcast/pkg/schedule"
	"github.com/kasuboski/simulcast/pkg/settings"
	"github.com/kasuboski/simulcast/pkg/title"
	"go.uber.org/zap"
)

type FeedSource interface {
	Poll(ctx context.Context, url string) (feed.Snapshot, error)
}

type TrackedStore interface {
	Add(name string) (bool, error)
	Remove(name string) (int, error)
	Series() []string
	Contains(rawTitle string) bool
}

type MetadataSource interface {
	Get(ctx context.Context, rawTitle string) metadata.Entry
	Peek(ctx context.Context, rawTitle string) (metadata.Entry, bool)
}

type ScheduleSource interface {
	Fetch(ctx context.Context) (schedule.Schedule, error)
}

type SettingsStore interface {
	Get() settings.Settings
	Update(next settings.Settings) error
}

// Dependencies are the collaborators of a Manager
type Dependencies struct {
	Feed       FeedSource
	Tracked    TrackedStore
	Metadata   MetadataSource
	Schedule   ScheduleSource
	Settings   SettingsStore
	Factory    download.Factory
	Normalizer title.Normalizer
	FileIO     mio.FileIO
}

// DownloadOptions are fixed download client options that are not user settings
type DownloadOptions struct {
	Implementation string
	Category       string
	Dir            string
}

// Release is a feed entry joined with tracked state
type Release struct {
	feed.Entry
	Tracked bool `json:"tracked"`
}

// TrackedSeries is a tracked series with whatever metadata is cached
type TrackedSeries struct {
	Series   string         `json:"series"`
	Metadata metadata.Entry `json:"metadata"`
	Cached   bool           `json:"cached"`
}

type Manager struct {
	feed       FeedSource
	tracked    TrackedStore
	metadata   MetadataSource
	schedule   ScheduleSource
	settings   SettingsStore
	factory    download.Factory
	normalizer title.Normalizer
	fileIO     mio.FileIO
	options    DownloadOptions
	now        func() time.Time

	lifecycle *reconcile.Lifecycle
	submitted *cache.Cache[string, time.Time]

	mu         sync.RWMutex
	client     download.Client
	library    *library.Folder
	reconciler *reconcile.Reconciler
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New creates a manager and its download client from the current settings
func New(deps Dependencies, options DownloadOptions, opts ...Option) (*Manager, error) {
	m := &Manager{
		feed:       deps.Feed,
		tracked:    deps.Tracked,
		metadata:   deps.Metadata,
		schedule:   deps.Schedule,
		settings:   deps.Settings,
		factory:    deps.Factory,
		normalizer: deps.Normalizer,
		fileIO:     deps.FileIO,
		options:    options,
		now:        time.Now,
		lifecycle:  reconcile.NewLifecycle(),
		submitted:  cache.New[string, time.Time](),
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := m.apply(m.settings.Get()); err != nil {
		return nil, err
	}
	return m, nil
}

// apply rebuilds the session dependent collaborators for s
func (m *Manager) apply(s settings.Settings) error {
	client, err := m.factory.NewDownloadClient(download.Config{
		Implementation: m.options.Implementation,
		Host:           s.ClientHost,
		Username:       s.ClientUser,
		Password:       s.ClientPassword,
		DownloadDir:    m.options.Dir,
	})
	if err != nil {
		return fmt.Errorf("failed to create download client: %w", err)
	}

	lib := library.New(s.DownloadFolder, m.fileIO)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.client = client
	m.library = lib
	m.reconciler = reconcile.New(m.normalizer, m.metadata, lib, client)
	return nil
}

func (m *Manager) session() (download.Client, *library.Folder, *reconcile.Reconciler) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client, m.library, m.reconciler
}

// Library is the current download folder
func (m *Manager) Library() *library.Folder {
	_, lib, _ := m.session()
	return lib
}

// PollFeed fetches the feed and marks releases of tracked series
func (m *Manager) PollFeed(ctx context.Context) ([]Release, error) {
	log := logger.FromCtx(ctx)

	snap, err := m.feed.Poll(ctx, m.settings.Get().FeedURL)
	if err != nil {
		log.Warnw("failed to poll feed", zap.Error(err))
		return nil, err
	}

	releases := make([]Release, 0, snap.Len())
	for e := range snap.All() {
		releases = append(releases, Release{
			Entry:   e,
			Tracked: m.tracked.Contains(e.Title.Series),
		})
	}
	return releases, nil
}

// Acquire submits the release titled rawTitle from a fresh feed snapshot and tracks its series.
// A tracking failure after a successful submit is still reported.
func (m *Manager) Acquire(ctx context.Context, rawTitle string) error {
	log := logger.FromCtx(ctx).With(zap.String("title", rawTitle))

	snap, err := m.feed.Poll(ctx, m.settings.Get().FeedURL)
	if err != nil {
		return err
	}

	e, ok := m.findRelease(snap, rawTitle)
	if !ok {
		return apperr.NotFound("acquire", fmt.Errorf("release %q is not in the feed", rawTitle))
	}

	if err := m.submit(ctx, e); err != nil {
		return err
	}

	if _, err := m.tracked.Add(e.Title.Series); err != nil {
		log.Errorw("submitted release but failed to track series", zap.Error(err))
		return fmt.Errorf("submitted %q but failed to track series: %w", e.Raw, err)
	}

	log.Infow("acquired release", zap.String("series", e.Title.Series), zap.String("episode", e.Title.Episode))
	return nil
}

// AutoAcquire submits new episodes of tracked series that are neither on disk nor already
// submitted by this process. Failures are per release; it returns how many were submitted.
func (m *Manager) AutoAcquire(ctx context.Context, releases []Release) (int, error) {
	log := logger.FromCtx(ctx)
	_, lib, _ := m.session()

	files, err := lib.Files(ctx)
	if err != nil {
		return 0, err
	}

	have := make(map[title.Title]struct{}, len(files))
	for _, f := range files {
		have[m.episodeKey(f)] = struct{}{}
	}

	var errs []error
	submitted := 0
	for _, r := range releases {
		if !r.Tracked || r.Link == "" {
			continue
		}
		if _, ok := m.submitted.Get(r.Link); ok {
			continue
		}
		key := m.episodeKey(r.Raw)
		if _, ok := have[key]; ok {
			continue
		}

		if err := m.submit(ctx, r.Entry); err != nil {
			log.Warnw("failed to auto download release", zap.String("title", r.Raw), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		have[key] = struct{}{}
		submitted++
	}

	if submitted > 0 {
		log.Infow("auto downloaded releases", zap.Int("count", submitted))
	}
	return submitted, errors.Join(errs...)
}

func (m *Manager) submit(ctx context.Context, e feed.Entry) error {
	if e.Link == "" {
		return apperr.NotFound("submit", fmt.Errorf("release %q has no link", e.Raw))
	}

	client, _, _ := m.session()
	if err := client.Submit(ctx, e.Link, m.options.Category); err != nil {
		return err
	}

	m.submitted.Set(e.Link, m.now())
	return nil
}

// episodeKey identifies an episode by release title or file name
func (m *Manager) episodeKey(filename string) title.Title {
	nt := m.normalizer.Normalize(title.TrimExt(path.Base(filename)))
	return title.Title{Series: nt.Series, Episode: nt.Episode}
}

// Track adds the series of name to the tracked list
func (m *Manager) Track(ctx context.Context, name string) (bool, error) {
	added, err := m.tracked.Add(name)
	if err != nil {
		return false, err
	}
	if added {
		logger.FromCtx(ctx).Infow("tracking series", zap.String("series", m.normalizer.Normalize(name).Key()))
	}
	return added, nil
}

// Untrack removes every tracked entry matching the series of name
func (m *Manager) Untrack(ctx context.Context, name string) (int, error) {
	removed, err := m.tracked.Remove(name)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, apperr.NotFound("untrack", fmt.Errorf("series %q is not tracked", name))
	}
	logger.FromCtx(ctx).Infow("untracked series", zap.String("series", m.normalizer.Normalize(name).Key()), zap.Int("entries", removed))
	return removed, nil
}

// Tracked lists tracked series with cached metadata. It never waits on the catalog.
func (m *Manager) Tracked(ctx context.Context) []TrackedSeries {
	series := m.tracked.Series()
	out := make([]TrackedSeries, 0, len(series))
	for _, s := range series {
		ts := TrackedSeries{Series: s}
		ts.Metadata, ts.Cached = m.metadata.Peek(ctx, s)
		out = append(out, ts)
	}
	return out
}

// Downloads reconciles the download folder with the client session and records the lifecycle
func (m *Manager) Downloads(ctx context.Context) ([]reconcile.Record, error) {
	records, err := m.ListDownloads(ctx)
	if err != nil {
		return nil, err
	}
	m.ObserveDownloads(ctx, records)
	return records, nil
}

// ListDownloads reconciles without recording lifecycle changes. Client errors are returned
// rather than treated as an empty session.
func (m *Manager) ListDownloads(ctx context.Context) ([]reconcile.Record, error) {
	client, lib, reconciler := m.session()

	files, err := lib.Files(ctx)
	if err != nil {
		return nil, err
	}

	torrents, err := client.List(ctx)
	if err != nil {
		return nil, err
	}

	return reconciler.Reconcile(ctx, files, torrents), nil
}

// ObserveDownloads feeds a reconciliation pass into the lifecycle tracker
func (m *Manager) ObserveDownloads(ctx context.Context, records []reconcile.Record) []reconcile.Transition {
	return m.lifecycle.Observe(ctx, records)
}

// DeleteDownload removes a file and purges its torrent
func (m *Manager) DeleteDownload(ctx context.Context, filename string) (reconcile.Record, error) {
	_, _, reconciler := m.session()
	return reconciler.Delete(ctx, filename)
}

// Metadata returns series metadata, fetching it on a cache miss
func (m *Manager) Metadata(ctx context.Context, rawTitle string) metadata.Entry {
	return m.metadata.Get(ctx, rawTitle)
}

// Schedule fetches the weekly schedule
func (m *Manager) Schedule(ctx context.Context) (schedule.Schedule, error) {
	return m.schedule.Fetch(ctx)
}

// NextAiring fetches the schedule and returns the next slot today
func (m *Manager) NextAiring(ctx context.Context) (schedule.Airing, bool, error) {
	s, err := m.schedule.Fetch(ctx)
	if err != nil {
		return schedule.Airing{}, false, err
	}
	a, ok := schedule.NextAiring(s, m.now())
	return a, ok, nil
}

// CheckClient verifies the download client session
func (m *Manager) CheckClient(ctx context.Context) error {
	client, _, _ := m.session()
	return client.Connect(ctx)
}

func (m *Manager) Settings() settings.Settings {
	return m.settings.Get()
}

// UpdateSettings persists next and reconnects with it
func (m *Manager) UpdateSettings(ctx context.Context, next settings.Settings) error {
	prev := m.settings.Get()
	if err := m.settings.Update(next); err != nil {
		return err
	}

	if err := m.apply(next); err != nil {
		logger.FromCtx(ctx).Errorw("failed to apply settings", zap.Error(err))
		return errors.Join(err, m.settings.Update(prev))
	}
	return nil
}

// findRelease matches rawTitle exactly and falls back to the same series and episode
func (m *Manager) findRelease(snap feed.Snapshot, rawTitle string) (feed.Entry, bool) {
	if e, ok := snap.Find(rawTitle); ok {
		return e, true
	}

	want := m.episodeKey(rawTitle)
	if want.Series == "" || want.Episode == "" {
		return feed.Entry{}, false
	}
	for e := range snap.All() {
		if m.episodeKey(e.Raw) == want {
			return e, true
		}
	}
	return feed.Entry{}, false
}
