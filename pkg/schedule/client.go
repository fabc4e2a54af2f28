package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kasuboski/simulcast/pkg/apperr"
	mhttp "github.com/kasuboski/simulcast/pkg/http"
	"github.com/kasuboski/simulcast/pkg/logger"
	"go.uber.org/zap"
)

const DefaultURI = "https://subsplease.org"

type response struct {
	TZ       string                    `json:"tz"`
	Schedule map[string][]responseSlot `json:"schedule"`
}

type responseSlot struct {
	Title    string `json:"title"`
	Page     string `json:"page"`
	ImageURL string `json:"image_url"`
	Time     string `json:"time"`
}

// Client fetches the weekly schedule
type Client struct {
	http mhttp.HTTPClient
	base *url.URL
}

func NewClient(httpClient mhttp.HTTPClient, uri string) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(uri, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid schedule uri: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid schedule uri: %q", uri)
	}

	return &Client{http: httpClient, base: base}, nil
}

// Fetch downloads the schedule in UTC. Slots with unknown days or unreadable times are skipped.
func (c *Client) Fetch(ctx context.Context) (Schedule, error) {
	log := logger.FromCtx(ctx)

	u := c.base.JoinPath("api/")
	u.RawQuery = url.Values{"f": {"schedule"}, "tz": {"UTC"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Schedule{}, apperr.Transport("build schedule request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Schedule{}, apperr.Transport("fetch schedule", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Schedule{}, apperr.Transport("fetch schedule", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&body); err != nil {
		return Schedule{}, apperr.Transport("decode schedule", err)
	}

	var s Schedule
	for _, day := range weekdays {
		for _, rs := range body.Schedule[day.String()] {
			hour, minute, err := parseClock(rs.Time)
			if err != nil {
				log.Debugw("skipping schedule slot", zap.String("title", rs.Title), zap.Error(err))
				continue
			}
			s.Slots = append(s.Slots, Slot{
				Day:      day,
				Hour:     hour,
				Minute:   minute,
				Title:    rs.Title,
				Page:     rs.Page,
				ImageURL: rs.ImageURL,
			})
		}
	}

	return s, nil
}

func parseClock(s string) (int, int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	return hour, minute, nil
}
