package download

import (
	"context"
	"fmt"
	"strings"

	mhttp "github.com/kasuboski/simulcast/pkg/http"
)

const (
	ImplementationQBittorrent  = "qbittorrent"
	ImplementationTransmission = "transmission"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_client.go github.com/kasuboski/simulcast/pkg/download Client
//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_factory.go github.com/kasuboski/simulcast/pkg/download Factory

// Client is a torrent client session
type Client interface {
	Connect(ctx context.Context) error
	Submit(ctx context.Context, link, category string) error
	List(ctx context.Context) ([]Torrent, error)
	Delete(ctx context.Context, id string, purgeFiles bool) error
}

// Torrent is one entry of the client session
type Torrent struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ContentPath string  `json:"contentPath"`
	Progress    float64 `json:"progress"` // 0 to 1
	Done        bool    `json:"done"`
}

// Config selects and addresses a client
type Config struct {
	Implementation string
	Host           string
	Username       string
	Password       string
	DownloadDir    string
}

type Factory interface {
	NewDownloadClient(config Config) (Client, error)
}

type DownloadClientFactory struct {
	http mhttp.HTTPClient
}

func NewDownloadClientFactory(httpClient mhttp.HTTPClient) Factory {
	return DownloadClientFactory{http: httpClient}
}

// NewDownloadClient returns a download client for the given configuration
func (f DownloadClientFactory) NewDownloadClient(config Config) (Client, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("download client host is required")
	}

	switch strings.ToLower(config.Implementation) {
	case ImplementationQBittorrent, "":
		return NewQBittorrentClient(config), nil
	case ImplementationTransmission:
		return NewTransmissionClient(f.http, config)
	default:
		return nil, fmt.Errorf("unknown download client implementation: %v", config.Implementation)
	}
}
