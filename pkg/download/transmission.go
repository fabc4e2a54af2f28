package download

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kasuboski/simulcast/pkg/apperr"
	mhttp "github.com/kasuboski/simulcast/pkg/http"
	"github.com/kasuboski/simulcast/pkg/logger"
	"go.uber.org/zap"
)

type TransmissionClient struct {
	http        mhttp.HTTPClient
	endpoint    *url.URL
	username    string
	password    string
	downloadDir string

	mutex   sync.Mutex
	session string
}

var _ Client = (*TransmissionClient)(nil)

type TransmissionRequest struct {
	Arguments any           `json:"arguments,omitempty"`
	Tag       *int          `json:"tag,omitempty"`
	Method    torrentMethod `json:"method"`
}

type torrentMethod string

const (
	SessionGetMethod    torrentMethod = "session-get"
	AddTorrentMethod    torrentMethod = "torrent-add"
	GetTorrentMethod    torrentMethod = "torrent-get"
	RemoveTorrentMethod torrentMethod = "torrent-remove"

	sessionHeader = "X-Transmission-Session-Id"
	rpcPath       = "/transmission/rpc"

	// status 6 is seeding
	statusSeeding = 6
)

var torrentFields = []string{"id", "hashString", "name", "downloadDir", "percentDone", "isFinished", "status"}

// NewTransmissionClient creates a client for the rpc endpoint at config.Host, e.g. http://localhost:9091
func NewTransmissionClient(httpClient mhttp.HTTPClient, config Config) (*TransmissionClient, error) {
	u, err := url.Parse(strings.TrimSuffix(config.Host, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid transmission host: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid transmission host: %q", config.Host)
	}
	if !strings.HasSuffix(u.Path, rpcPath) {
		u = u.JoinPath(rpcPath)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &TransmissionClient{
		http:        httpClient,
		endpoint:    u,
		username:    config.Username,
		password:    config.Password,
		downloadDir: config.DownloadDir,
	}, nil
}

type TransmissionTorrent struct {
	ID          int     `json:"id"`
	HashString  string  `json:"hashString"`
	Name        string  `json:"name"`
	DownloadDir string  `json:"downloadDir"`
	PercentDone float64 `json:"percentDone"`
	IsFinished  bool    `json:"isFinished"`
	Status      int     `json:"status"`
}

func (t TransmissionTorrent) ToTorrent() Torrent {
	return Torrent{
		ID:          t.HashString,
		Name:        t.Name,
		ContentPath: filepath.Join(t.DownloadDir, t.Name),
		Progress:    t.PercentDone,
		Done:        t.IsFinished || t.Status == statusSeeding || t.PercentDone >= 1,
	}
}

type TransmissionResponse struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments"`
}

type TorrentList struct {
	Torrents []TransmissionTorrent `json:"torrents"`
}

type AddTorrentPayload struct {
	DownloadDir string   `json:"download-dir,omitempty"`
	Filename    string   `json:"filename"`
	Labels      []string `json:"labels,omitempty"`
}

type RemoveTorrentPayload struct {
	IDs             []string `json:"ids"`
	DeleteLocalData bool     `json:"delete-local-data"`
}

// Connect performs the session handshake
func (c *TransmissionClient) Connect(ctx context.Context) error {
	_, err := c.call(ctx, SessionGetMethod, nil)
	return err
}

// Submit adds a torrent by url or magnet link, labelled with category
func (c *TransmissionClient) Submit(ctx context.Context, link, category string) error {
	if link == "" {
		return errors.New("torrent link is required")
	}

	payload := AddTorrentPayload{
		DownloadDir: c.downloadDir,
		Filename:    link,
	}
	if category != "" {
		payload.Labels = []string{category}
	}

	if _, err := c.call(ctx, AddTorrentMethod, payload); err != nil {
		return err
	}

	logger.FromCtx(ctx).Debugw("submitted torrent", zap.String("category", category))
	return nil
}

// List fetches all torrents
func (c *TransmissionClient) List(ctx context.Context) ([]Torrent, error) {
	args, err := c.call(ctx, GetTorrentMethod, map[string]any{"fields": torrentFields})
	if err != nil {
		return nil, err
	}

	var list TorrentList
	if err := json.Unmarshal(args, &list); err != nil {
		return nil, fmt.Errorf("failed to decode torrent list: %w", err)
	}

	torrents := make([]Torrent, 0, len(list.Torrents))
	for _, t := range list.Torrents {
		torrents = append(torrents, t.ToTorrent())
	}
	return torrents, nil
}

// Delete removes a torrent by hash
func (c *TransmissionClient) Delete(ctx context.Context, id string, purgeFiles bool) error {
	_, err := c.call(ctx, RemoveTorrentMethod, RemoveTorrentPayload{
		IDs:             []string{id},
		DeleteLocalData: purgeFiles,
	})
	return err
}

func (c *TransmissionClient) call(ctx context.Context, method torrentMethod, arguments any) (json.RawMessage, error) {
	b, err := json.Marshal(TransmissionRequest{Method: method, Arguments: arguments})
	if err != nil {
		return nil, err
	}

	b, err = c.do(ctx, b, false)
	if err != nil {
		return nil, err
	}

	var response TransmissionResponse
	if err := json.Unmarshal(b, &response); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	if response.Result != "success" {
		return nil, fmt.Errorf("%s: unexpected result: %v", method, response.Result)
	}

	return response.Arguments, nil
}

func (c *TransmissionClient) do(ctx context.Context, body []byte, retried bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sessionHeader, c.getSessionID())
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.ClientConnection("transmission rpc", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	// need to get a new session id from the response if 409
	case http.StatusConflict:
		// only one new session per request attempt
		if retried {
			return nil, apperr.ClientConnection("transmission rpc", errors.New("session id is invalid after retry"))
		}

		session := resp.Header.Get(sessionHeader)
		if session == "" {
			return nil, apperr.ClientConnection("transmission rpc", errors.New("session id is empty"))
		}

		c.setSessionID(session)
		return c.do(ctx, body, true)

	case http.StatusOK:
		return io.ReadAll(resp.Body)

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, apperr.ClientConnection("transmission rpc", fmt.Errorf("authentication failed: %v", resp.Status))

	default:
		return nil, fmt.Errorf("unexpected status code: %v", resp.Status)
	}
}

func (c *TransmissionClient) setSessionID(id string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.session = id
}

func (c *TransmissionClient) getSessionID() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.session
}
