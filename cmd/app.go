package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kasuboski/simulcast/config"
	"github.com/kasuboski/simulcast/pkg/catalog"
	"github.com/kasuboski/simulcast/pkg/download"
	"github.com/kasuboski/simulcast/pkg/feed"
	mhttp "github.com/kasuboski/simulcast/pkg/http"
	mio "github.com/kasuboski/simulcast/pkg/io"
	"github.com/kasuboski/simulcast/pkg/logger"
	"github.com/kasuboski/simulcast/pkg/manager"
	"github.com/kasuboski/simulcast/pkg/metadata"
	"github.com/kasuboski/simulcast/pkg/ratelimit"
	"github.com/kasuboski/simulcast/pkg/schedule"
	"github.com/kasuboski/simulcast/pkg/settings"
	"github.com/kasuboski/simulcast/pkg/title"
	"github.com/kasuboski/simulcast/pkg/tracked"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	userAgent         = "simulcast"
	defaultDownloads  = "downloads"
	clientHTTPTimeout = 30 * time.Second
)

// app is everything a command needs, wired from configuration
type app struct {
	config   config.Config
	manager  *manager.Manager
	metadata *metadata.Cache
	settings *settings.Store
}

func settingsDefaults(cfg config.Config) settings.Settings {
	folder := cfg.Download.Dir
	if folder == "" {
		folder = defaultDownloads
	}
	return settings.Settings{
		DownloadFolder: folder,
		FeedURL:        cfg.Feed.URL,
		ClientHost:     cfg.Download.Host,
		ClientUser:     cfg.Download.Username,
		ClientPassword: cfg.Download.Password,
	}
}

func newApp(ctx context.Context) (*app, error) {
	log := logger.FromCtx(ctx)

	cfg, err := config.New(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to read configurations: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	normalizer := title.New(cfg.Feed.ReleaseTag)
	fileIO := &mio.MediaFileSystem{}

	httpClient := mhttp.NewRateLimitedHTTPClient(
		mhttp.WithMaxRetries(cfg.Catalog.MaxRetries),
		mhttp.WithBaseBackoff(cfg.Catalog.Backoff),
		mhttp.WithUserAgent(userAgent),
	)

	// one limiter for every catalog call in the process
	limiter := ratelimit.New(cfg.Catalog.CallsPerSecond)

	cat, err := catalog.New(httpClient, cfg.Catalog.URI)
	if err != nil {
		return nil, err
	}

	cache, err := metadata.New(cfg.Catalog.CacheDir, normalizer, cat, limiter,
		metadata.WithMaxAttempts(cfg.Catalog.MaxAttempts),
		metadata.WithBackoff(cfg.Catalog.Backoff),
		metadata.WithFileIO(fileIO),
	)
	if err != nil {
		return nil, err
	}

	trackedStore := tracked.New(cfg.Tracked.FilePath, normalizer, fileIO)
	if _, err := trackedStore.Load(); err != nil {
		return nil, err
	}

	settingsStore := settings.New(cfg.Settings.FilePath, settingsDefaults(cfg), settings.WithFileIO(fileIO))
	if _, err := settingsStore.Load(); err != nil {
		return nil, err
	}

	scheduleClient, err := schedule.NewClient(httpClient, cfg.Schedule.URI)
	if err != nil {
		return nil, err
	}

	factory := download.NewDownloadClientFactory(&http.Client{Timeout: clientHTTPTimeout})

	m, err := manager.New(manager.Dependencies{
		Feed:       feed.New(httpClient, normalizer),
		Tracked:    trackedStore,
		Metadata:   cache,
		Schedule:   scheduleClient,
		Settings:   settingsStore,
		Factory:    factory,
		Normalizer: normalizer,
		FileIO:     fileIO,
	}, manager.DownloadOptions{
		Implementation: cfg.Download.Implementation,
		Category:       cfg.Download.Category,
		Dir:            cfg.Download.Dir,
	})
	if err != nil {
		return nil, err
	}

	log.Debugw("configured", zap.String("config", viper.ConfigFileUsed()), zap.String("implementation", cfg.Download.Implementation))

	return &app{
		config:   cfg,
		manager:  m,
		metadata: cache,
		settings: settingsStore,
	}, nil
}
