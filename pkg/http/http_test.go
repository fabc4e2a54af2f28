package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/kasuboski/simulcast/pkg/http/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewRateLimitedHTTPClient(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		c := NewRateLimitedHTTPClient()
		assert.Equal(t, http.DefaultClient, c.client)
		assert.Equal(t, DefaultMaxRetries, c.maxRetries)
		assert.Equal(t, DefaultBaseBackoff, c.baseBackoff)
		assert.Equal(t, DefaultUserAgent, c.userAgent)
	})

	t.Run("custom", func(t *testing.T) {
		custom := &http.Client{Timeout: time.Second}
		c := NewRateLimitedHTTPClient(
			WithMaxRetries(5),
			WithBaseBackoff(time.Millisecond*100),
			WithHTTPClient(custom),
			WithUserAgent("test-agent"),
		)
		assert.Same(t, custom, c.client)
		assert.Equal(t, 5, c.maxRetries)
		assert.Equal(t, time.Millisecond*100, c.baseBackoff)
		assert.Equal(t, "test-agent", c.userAgent)
	})
}

func TestRateLimitedHTTPClient_Do(t *testing.T) {
	t.Run("error during request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest("GET", "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).Return(nil, errors.New("http error"))
		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp))
		resp, err := client.Do(req)
		assert.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("non 429 response", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest("GET", "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).Return(&http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString("non 429 response")),
		}, nil)

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp))
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, DefaultUserAgent, req.Header.Get("User-Agent"))

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "non 429 response", string(b))
	})

	t.Run("keeps caller user agent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest("GET", "https://example.com", nil)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "caller")

		mhttp.EXPECT().Do(req).Return(&http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil)

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp))
		_, err = client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, "caller", req.Header.Get("User-Agent"))
	})

	t.Run("429 response - max retries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest("GET", "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).Return(&http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(bytes.NewBufferString("429 response")),
		}, nil)
		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp), WithMaxRetries(1))
		resp, err := client.Do(req)
		assert.ErrorContains(t, err, "rate limit exceeded after 1 retries")
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	})

	t.Run("429 then success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest("GET", "https://example.com", nil)
		require.NoError(t, err)

		first := mhttp.EXPECT().Do(req).Return(&http.Response{
			StatusCode: http.StatusTooManyRequests,
			Header:     http.Header{"Retry-After": []string{"0"}},
			Body:       http.NoBody,
		}, nil)
		second := mhttp.EXPECT().Do(req).Return(&http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil)
		gomock.InOrder(first, second)

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp), WithMaxRetries(2))
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("context cancelled during backoff", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		ctx, cancel := context.WithCancel(context.Background())
		req, err := http.NewRequestWithContext(ctx, "GET", "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).DoAndReturn(func(*http.Request) (*http.Response, error) {
			cancel()
			return &http.Response{
				StatusCode: http.StatusTooManyRequests,
				Header:     http.Header{"Retry-After": []string{"60"}},
				Body:       http.NoBody,
			}, nil
		})

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp))
		resp, err := client.Do(req)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, resp)
	})
}

func TestRateLimitedClient_getRetryAfter(t *testing.T) {
	t.Run("retry after header", func(t *testing.T) {
		c := &RateLimitedClient{baseBackoff: time.Second}
		got := c.getRetryAfter(&http.Response{Header: http.Header{"Retry-After": []string{"1"}}}, 0)
		assert.Equal(t, time.Second, got)
	})

	t.Run("exponential backoff with jitter", func(t *testing.T) {
		c := &RateLimitedClient{baseBackoff: time.Second}
		got := c.getRetryAfter(&http.Response{}, 3)
		assert.GreaterOrEqual(t, got, time.Second*8)
		assert.Less(t, got, time.Second*9)
	})

	t.Run("zero backoff", func(t *testing.T) {
		c := &RateLimitedClient{}
		assert.Equal(t, time.Duration(0), c.getRetryAfter(&http.Response{}, 2))
	})
}
