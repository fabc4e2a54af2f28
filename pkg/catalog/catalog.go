// Package catalog talks to the Jikan v4 api for series artwork, synopsis and airing status.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kasuboski/simulcast/pkg/apperr"
	mhttp "github.com/kasuboski/simulcast/pkg/http"
)

const (
	DefaultURI = "https://api.jikan.moe/v4"

	// maxImageBytes bounds catalog responses, artwork included
	maxImageBytes = 16 << 20
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_catalog.go github.com/kasuboski/simulcast/pkg/catalog Catalog

// Catalog looks up series metadata
type Catalog interface {
	Search(ctx context.Context, series string) (*Anime, error)
	Image(ctx context.Context, imageURL string) ([]byte, error)
}

// Anime is the first search result of a series query
type Anime struct {
	ImageURL string
	Synopsis string
	Status   string
}

type searchResponse struct {
	Data []struct {
		Images struct {
			JPG struct {
				LargeImageURL string `json:"large_image_url"`
			} `json:"jpg"`
		} `json:"images"`
		Synopsis *string `json:"synopsis"`
		Status   string  `json:"status"`
	} `json:"data"`
}

var _ Catalog = (*Client)(nil)

// Client is an http client for the catalog api
type Client struct {
	http     mhttp.HTTPClient
	base     *url.URL
	maxBytes int64
}

// New creates a catalog client for the api at uri
func New(httpClient mhttp.HTTPClient, uri string) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(uri, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid catalog uri: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid catalog uri: %q", uri)
	}

	return &Client{
		http:     httpClient,
		base:     base,
		maxBytes: maxImageBytes,
	}, nil
}

// Search queries the catalog for series with a result limit of 1.
// An empty result is a NotFound error, everything else that goes wrong is a Transport error.
func (c *Client) Search(ctx context.Context, series string) (*Anime, error) {
	u := c.base.JoinPath("anime")
	q := url.Values{}
	q.Set("q", series)
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	b, err := c.get(ctx, u.String())
	if err != nil {
		return nil, apperr.Transport("catalog search", err)
	}

	var res searchResponse
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, apperr.Transport("catalog search", fmt.Errorf("decode response: %w", err))
	}

	if len(res.Data) == 0 {
		return nil, apperr.NotFound("catalog search", fmt.Errorf("no match for %q", series))
	}

	first := res.Data[0]
	anime := &Anime{
		ImageURL: first.Images.JPG.LargeImageURL,
		Status:   first.Status,
	}
	if first.Synopsis != nil {
		anime.Synopsis = *first.Synopsis
	}

	return anime, nil
}

// Image downloads artwork bytes
func (c *Client) Image(ctx context.Context, imageURL string) ([]byte, error) {
	if imageURL == "" {
		return nil, apperr.Transport("catalog image", errors.New("empty image url"))
	}

	b, err := c.get(ctx, imageURL)
	if err != nil {
		return nil, apperr.Transport("catalog image", err)
	}

	return b, nil
}

func (c *Client) get(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %v", resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > c.maxBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", c.maxBytes)
	}
	return b, nil
}
