// Package metadata is a disk backed cache of series artwork, synopsis and airing status
// filled from the catalog behind a shared rate limiter.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/kasuboski/simulcast/pkg/apperr"
	"github.com/kasuboski/simulcast/pkg/cache"
	"github.com/kasuboski/simulcast/pkg/catalog"
	mio "github.com/kasuboski/simulcast/pkg/io"
	"github.com/kasuboski/simulcast/pkg/logger"
	"github.com/kasuboski/simulcast/pkg/ratelimit"
	"github.com/kasuboski/simulcast/pkg/title"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = time.Second

	imageExt   = ".jpg"
	sidecarExt = ".json"
)

// Cache resolves raw titles to metadata entries. Get never fails; lookups that
// cannot be completed degrade to a non-persisted Sentinel so the next Get retries.
type Cache struct {
	dir         string
	normalizer  title.Normalizer
	catalog     catalog.Catalog
	limiter     ratelimit.Waiter
	fs          mio.FileIO
	locker      *mio.Locker
	memo        *cache.Cache[string, Entry]
	group       singleflight.Group
	maxAttempts int
	backoff     time.Duration
	now         func() time.Time
}

// Option configures a Cache
type Option func(*Cache)

// WithMaxAttempts sets how many catalog attempts a miss makes
func WithMaxAttempts(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the fixed delay between attempts
func WithBackoff(d time.Duration) Option {
	return func(c *Cache) {
		c.backoff = d
	}
}

// WithFileIO overrides the file system implementation
func WithFileIO(f mio.FileIO) Option {
	return func(c *Cache) {
		c.fs = f
	}
}

// WithNow overrides the time source for FetchedAt
func WithNow(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache stored under dir. The limiter must be the process wide instance for the catalog.
func New(dir string, normalizer title.Normalizer, cat catalog.Catalog, limiter ratelimit.Waiter, opts ...Option) (*Cache, error) {
	c := &Cache{
		dir:         dir,
		normalizer:  normalizer,
		catalog:     cat,
		limiter:     limiter,
		fs:          &mio.MediaFileSystem{},
		locker:      mio.NewLocker(filepath.Join(dir, ".cache")),
		memo:        cache.New[string, Entry](),
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Persistence("create cache dir", err)
	}

	return c, nil
}

// Get returns the entry for the series of rawTitle. Cache hits never wait on the limiter or touch the network.
func (c *Cache) Get(ctx context.Context, rawTitle string) Entry {
	key := c.normalizer.Normalize(rawTitle).Key()
	log := logger.FromCtx(ctx).With(zap.String("series", key))

	safe := title.SafeFilename(key)
	if safe == "" {
		log.Debugw("series has no usable cache key")
		return Sentinel(key)
	}

	if e, ok := c.lookup(ctx, key, safe); ok {
		return e
	}

	v, _, _ := c.group.Do(safe, func() (any, error) {
		if e, ok := c.lookup(ctx, key, safe); ok {
			return e, nil
		}
		return c.fetch(ctx, key, safe), nil
	})

	return v.(Entry)
}

// Peek returns the cached entry for rawTitle without any network access
func (c *Cache) Peek(ctx context.Context, rawTitle string) (Entry, bool) {
	key := c.normalizer.Normalize(rawTitle).Key()
	safe := title.SafeFilename(key)
	if safe == "" {
		return Entry{}, false
	}
	return c.lookup(ctx, key, safe)
}

// Invalidate removes the persisted entry for rawTitle so the next Get refetches it
func (c *Cache) Invalidate(ctx context.Context, rawTitle string) error {
	key := c.normalizer.Normalize(rawTitle).Key()
	safe := title.SafeFilename(key)
	if safe == "" {
		return nil
	}

	c.memo.Delete(safe)
	return c.locker.WithLock(func() error {
		var errs []error
		for _, p := range []string{c.sidecarPath(safe), c.imagePath(safe)} {
			if err := c.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, apperr.Persistence("invalidate cache entry", err))
			}
		}
		return errors.Join(errs...)
	})
}

func (c *Cache) imagePath(safe string) string {
	return filepath.Join(c.dir, safe+imageExt)
}

func (c *Cache) sidecarPath(safe string) string {
	return filepath.Join(c.dir, safe+sidecarExt)
}

// lookup checks memory then durable storage
func (c *Cache) lookup(ctx context.Context, key, safe string) (Entry, bool) {
	if e, ok := c.memo.Get(safe); ok {
		return e, true
	}

	log := logger.FromCtx(ctx).With(zap.String("series", key))

	b, err := c.fs.ReadFile(c.sidecarPath(safe))
	switch {
	case err == nil:
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			log.Warnw("ignoring unreadable cache sidecar", zap.Error(err))
			return Entry{}, false
		}
		c.memo.Set(safe, e)
		return e, true
	case !errors.Is(err, fs.ErrNotExist):
		log.Warnw("failed to read cache sidecar", zap.Error(err))
		return Entry{}, false
	}

	// image only entries predate sidecars
	info, err := c.fs.Stat(c.imagePath(safe))
	if err != nil || info.IsDir() {
		return Entry{}, false
	}

	e := Entry{
		Key:       key,
		ImagePath: c.imagePath(safe),
		Status:    StatusUnknown,
		FetchedAt: info.ModTime(),
	}
	c.memo.Set(safe, e)
	return e, true
}

func (c *Cache) fetch(ctx context.Context, key, safe string) Entry {
	log := logger.FromCtx(ctx).With(zap.String("series", key))

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.backoff); err != nil {
				return Sentinel(key)
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return Sentinel(key)
		}

		e, err := c.attempt(ctx, key, safe)
		switch {
		case err == nil:
			log.Debugw("cached series metadata", zap.Int("attempt", attempt))
			return e
		case apperr.IsNotFound(err):
			log.Infow("series not found in catalog", zap.Error(err))
			return Sentinel(key)
		case apperr.IsPersistence(err):
			log.Errorw("failed to persist series metadata", zap.Error(err))
			return Sentinel(key)
		default:
			log.Warnw("failed to fetch series metadata",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.maxAttempts),
				zap.Error(err))
		}
	}

	log.Warnw("giving up on series metadata", zap.Int("attempts", c.maxAttempts))
	return Sentinel(key)
}

func (c *Cache) attempt(ctx context.Context, key, safe string) (Entry, error) {
	anime, err := c.catalog.Search(ctx, key)
	if err != nil {
		return Entry{}, err
	}

	var image []byte
	if anime.ImageURL != "" {
		image, err = c.catalog.Image(ctx, anime.ImageURL)
		if err != nil {
			return Entry{}, err
		}
	}

	e := Entry{
		Key:         key,
		Description: anime.Synopsis,
		Status:      statusFromCatalog(anime.Status),
		FetchedAt:   c.now().UTC(),
	}
	if image != nil {
		e.ImagePath = c.imagePath(safe)
	}

	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return Entry{}, apperr.Persistence("encode cache sidecar", err)
	}

	err = c.locker.WithLock(func() error {
		if image != nil {
			if err := c.fs.WriteFileAtomic(e.ImagePath, image, 0o644); err != nil {
				return apperr.Persistence("write cached image", err)
			}
		}

		// an image without a sidecar reads as a legacy hit, so it must not outlive a failed sidecar write
		if err := c.fs.WriteFileAtomic(c.sidecarPath(safe), b, 0o644); err != nil {
			if image != nil {
				if rmErr := c.fs.Remove(e.ImagePath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
					err = errors.Join(err, rmErr)
				}
			}
			return apperr.Persistence("write cache sidecar", err)
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	c.memo.Set(safe, e)
	return e, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
