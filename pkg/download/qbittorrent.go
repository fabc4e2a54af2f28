package download

import (
	"context"
	"errors"
	"sync"

	"github.com/autobrr/go-qbittorrent"
	"github.com/kasuboski/simulcast/pkg/apperr"
	"github.com/kasuboski/simulcast/pkg/logger"
	"go.uber.org/zap"
)

// qbtAPI is the part of the qBittorrent web api the client uses
type qbtAPI interface {
	LoginCtx(ctx context.Context) error
	GetTorrentsCtx(ctx context.Context, o qbittorrent.TorrentFilterOptions) ([]qbittorrent.Torrent, error)
	AddTorrentFromUrlCtx(ctx context.Context, url string, options map[string]string) error
	DeleteTorrentsCtx(ctx context.Context, hashes []string, deleteFiles bool) error
}

type QBittorrentClient struct {
	api         qbtAPI
	downloadDir string

	mu        sync.Mutex
	connected bool
}

var _ Client = (*QBittorrentClient)(nil)

func NewQBittorrentClient(config Config) *QBittorrentClient {
	api := qbittorrent.NewClient(qbittorrent.Config{
		Host:     config.Host,
		Username: config.Username,
		Password: config.Password,
	})

	return newQBittorrentClient(api, config.DownloadDir)
}

func newQBittorrentClient(api qbtAPI, downloadDir string) *QBittorrentClient {
	return &QBittorrentClient{
		api:         api,
		downloadDir: downloadDir,
	}
}

// Connect logs in to the web ui
func (c *QBittorrentClient) Connect(ctx context.Context) error {
	if err := c.api.LoginCtx(ctx); err != nil {
		c.setConnected(false)
		return apperr.ClientConnection("qbittorrent login", err)
	}

	c.setConnected(true)
	return nil
}

// Submit adds a torrent by url or magnet link under category
func (c *QBittorrentClient) Submit(ctx context.Context, link, category string) error {
	if link == "" {
		return errors.New("torrent link is required")
	}
	if err := c.ensureConnected(ctx); err != nil {
		return err
	}

	options := map[string]string{}
	if category != "" {
		options["category"] = category
	}
	if c.downloadDir != "" {
		options["savepath"] = c.downloadDir
	}

	if err := c.api.AddTorrentFromUrlCtx(ctx, link, options); err != nil {
		c.setConnected(false)
		return apperr.ClientConnection("qbittorrent add torrent", err)
	}

	logger.FromCtx(ctx).Debugw("submitted torrent", zap.String("category", category))
	return nil
}

// List returns every torrent in the session
func (c *QBittorrentClient) List(ctx context.Context) ([]Torrent, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	torrents, err := c.api.GetTorrentsCtx(ctx, qbittorrent.TorrentFilterOptions{})
	if err != nil {
		c.setConnected(false)
		return nil, apperr.ClientConnection("qbittorrent list torrents", err)
	}

	out := make([]Torrent, 0, len(torrents))
	for _, t := range torrents {
		out = append(out, Torrent{
			ID:          t.Hash,
			Name:        t.Name,
			ContentPath: t.ContentPath,
			Progress:    t.Progress,
			Done:        t.Progress >= 1,
		})
	}
	return out, nil
}

// Delete removes a torrent by hash, optionally with its downloaded data
func (c *QBittorrentClient) Delete(ctx context.Context, id string, purgeFiles bool) error {
	if err := c.ensureConnected(ctx); err != nil {
		return err
	}

	if err := c.api.DeleteTorrentsCtx(ctx, []string{id}, purgeFiles); err != nil {
		c.setConnected(false)
		return apperr.ClientConnection("qbittorrent delete torrent", err)
	}
	return nil
}

func (c *QBittorrentClient) ensureConnected(ctx context.Context) error {
	c.mu.Lock()
	connected := c.connected
	c.mu.Unlock()

	if connected {
		return nil
	}
	return c.Connect(ctx)
}

func (c *QBittorrentClient) setConnected(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = v
}
