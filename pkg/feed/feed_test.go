package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kasuboski/simulcast/pkg/apperr"
	"github.com/kasuboski/simulcast/pkg/title"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>SubsPlease RSS</title>
    <link>https://subsplease.org</link>
    <item>
      <title>[SubsPlease] Frieren - 05 (1080p) [ABCD1234].mkv</title>
      <link>magnet:?xt=urn:btih:frieren05</link>
      <pubDate>Mon, 01 Apr 2024 17:31:02 +0000</pubDate>
    </item>
    <item>
      <title>[SubsPlease] Dandadan - 12 (1080p) [EF567890].mkv</title>
      <link>https://nyaa.si/view/2/torrent</link>
      <pubDate>Sun, 31 Mar 2024 12:00:00 +0000</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://example.invalid/skip</link>
    </item>
  </channel>
</rss>`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func collect(s Snapshot) []Entry {
	var out []Entry
	for e := range s.All() {
		out = append(out, e)
	}
	return out
}

func TestIngestor_Poll(t *testing.T) {
	srv := serve(t, http.StatusOK, rss)
	i := New(srv.Client(), title.New(title.DefaultTag))

	snap, err := i.Poll(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())

	entries := collect(snap)
	require.Len(t, entries, 2)

	assert.Equal(t, "[SubsPlease] Frieren - 05 (1080p) [ABCD1234].mkv", entries[0].Raw)
	assert.Equal(t, "magnet:?xt=urn:btih:frieren05", entries[0].Link)
	assert.Equal(t, "Frieren", entries[0].Title.Series)
	assert.Equal(t, "05 (1080p)", entries[0].Title.Episode)
	assert.Equal(t, "SubsPlease", entries[0].Title.ReleaseGroup)
	assert.Equal(t, "1080p", entries[0].Resolution)
	assert.Equal(t, time.Date(2024, 4, 1, 17, 31, 2, 0, time.UTC), entries[0].Published)

	assert.Equal(t, "Dandadan", entries[1].Title.Series)
	assert.Equal(t, "12 (1080p)", entries[1].Title.Episode)
}

func TestSnapshot_AllIsRestartable(t *testing.T) {
	srv := serve(t, http.StatusOK, rss)
	i := New(srv.Client(), title.New(title.DefaultTag))

	snap, err := i.Poll(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, collect(snap), collect(snap))

	// stopping early leaves the snapshot usable
	for range snap.All() {
		break
	}
	assert.Len(t, collect(snap), 2)
}

func TestSnapshot_Find(t *testing.T) {
	srv := serve(t, http.StatusOK, rss)
	i := New(srv.Client(), title.New(title.DefaultTag))

	snap, err := i.Poll(context.Background(), srv.URL)
	require.NoError(t, err)

	e, ok := snap.Find("[SubsPlease] Dandadan - 12 (1080p) [EF567890].mkv")
	require.True(t, ok)
	assert.Equal(t, "https://nyaa.si/view/2/torrent", e.Link)

	_, ok = snap.Find("Dandadan - 12")
	assert.False(t, ok)
}

func TestIngestor_PollFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "oops"},
		{name: "malformed feed", status: http.StatusOK, body: "this is not a feed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			i := New(srv.Client(), title.New(title.DefaultTag))

			snap, err := i.Poll(context.Background(), srv.URL)
			require.Error(t, err)
			assert.True(t, apperr.IsTransport(err))
			assert.Zero(t, snap.Len())
			assert.Empty(t, collect(snap))
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := serve(t, http.StatusOK, rss)
		url := srv.URL
		srv.Close()

		i := New(http.DefaultClient, title.New(title.DefaultTag))
		snap, err := i.Poll(context.Background(), url)
		require.Error(t, err)
		assert.True(t, apperr.IsTransport(err))
		assert.Zero(t, snap.Len())
	})
}
