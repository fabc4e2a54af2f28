package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kasuboski/simulcast/pkg/apperr"
	"github.com/kasuboski/simulcast/pkg/catalog"
	"github.com/kasuboski/simulcast/pkg/catalog/mocks"
	mio "github.com/kasuboski/simulcast/pkg/io"
	"github.com/kasuboski/simulcast/pkg/title"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type countingWaiter struct {
	calls atomic.Int32
	err   error
}

func (w *countingWaiter) Wait(ctx context.Context) error {
	w.calls.Add(1)
	if w.err != nil {
		return w.err
	}
	return ctx.Err()
}

var fixedNow = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func newTestCache(t *testing.T, cat catalog.Catalog, w *countingWaiter, opts ...Option) (*Cache, string) {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{WithBackoff(0), WithNow(func() time.Time { return fixedNow })}, opts...)
	c, err := New(dir, title.New(title.DefaultTag), cat, w, opts...)
	require.NoError(t, err)
	return c, dir
}

func TestCache_Get_Miss(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, dir := newTestCache(t, cat, w)

	cat.EXPECT().Search(gomock.Any(), "Frieren").Return(&catalog.Anime{
		ImageURL: "https://cdn.example/frieren.jpg",
		Synopsis: "An elf mage",
		Status:   "Currently Airing",
	}, nil)
	cat.EXPECT().Image(gomock.Any(), "https://cdn.example/frieren.jpg").Return([]byte("jpeg"), nil)

	e := c.Get(ctx, "[SubsPlease] Frieren - 05 (1080p) [ABCD1234].mkv")
	assert.Equal(t, "Frieren", e.Key)
	assert.Equal(t, filepath.Join(dir, "Frieren.jpg"), e.ImagePath)
	assert.Equal(t, "An elf mage", e.Description)
	assert.Equal(t, StatusOngoing, e.Status)
	assert.Equal(t, fixedNow, e.FetchedAt)
	assert.False(t, e.Unavailable())
	assert.Equal(t, int32(1), w.calls.Load())

	b, err := os.ReadFile(filepath.Join(dir, "Frieren.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(b))

	b, err = os.ReadFile(filepath.Join(dir, "Frieren.json"))
	require.NoError(t, err)
	var stored Entry
	require.NoError(t, json.Unmarshal(b, &stored))
	assert.Equal(t, e, stored)
}

func TestCache_Get_HitMakesNoCalls(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, _ := newTestCache(t, cat, w)

	cat.EXPECT().Search(gomock.Any(), "Frieren").Return(&catalog.Anime{Status: "Finished Airing"}, nil).Times(1)

	first := c.Get(ctx, "Frieren - 01")
	second := c.Get(ctx, "[SubsPlease] Frieren - 02 (1080p)")
	assert.Equal(t, first, second)
	assert.Equal(t, StatusEnded, second.Status)
	assert.Empty(t, second.ImagePath)
	assert.Equal(t, int32(1), w.calls.Load())
}

func TestCache_Get_HitFromDisk(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	_, dir := newTestCache(t, cat, w)

	stored := Entry{Key: "Dandadan", ImagePath: filepath.Join(dir, "Dandadan.jpg"), Status: StatusOngoing, FetchedAt: fixedNow}
	b, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dandadan.json"), b, 0o644))

	// a fresh cache over the same directory
	fresh, err := New(dir, title.New(title.DefaultTag), cat, w)
	require.NoError(t, err)

	e := fresh.Get(ctx, "Dandadan - 03")
	assert.Equal(t, stored, e)
	assert.Zero(t, w.calls.Load())
}

func TestCache_Get_LegacyImage(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, dir := newTestCache(t, cat, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Oshi no Ko.jpg"), []byte("old"), 0o644))

	e := c.Get(ctx, "Oshi no Ko - 11")
	assert.Equal(t, filepath.Join(dir, "Oshi no Ko.jpg"), e.ImagePath)
	assert.Equal(t, StatusUnknown, e.Status)
	assert.False(t, e.Unavailable())
	assert.Zero(t, w.calls.Load())
}

func TestCache_Get_TransportFailures(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, dir := newTestCache(t, cat, w)

	cat.EXPECT().Search(gomock.Any(), "Frieren").Return(nil, apperr.Transport("search", errors.New("boom"))).Times(DefaultMaxAttempts)

	e := c.Get(ctx, "Frieren - 05")
	assert.Equal(t, Sentinel("Frieren"), e)
	assert.True(t, e.Unavailable())
	assert.Equal(t, int32(DefaultMaxAttempts), w.calls.Load())

	_, err := os.Stat(filepath.Join(dir, "Frieren.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(dir, "Frieren.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, ok := c.Peek(ctx, "Frieren - 05")
	assert.False(t, ok)
}

func TestCache_Get_RecoversAfterFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, _ := newTestCache(t, cat, w)

	gomock.InOrder(
		cat.EXPECT().Search(gomock.Any(), "Frieren").Return(nil, apperr.Transport("search", errors.New("timeout"))),
		cat.EXPECT().Search(gomock.Any(), "Frieren").Return(&catalog.Anime{Status: "Currently Airing"}, nil),
	)

	e := c.Get(ctx, "Frieren - 05")
	assert.Equal(t, StatusOngoing, e.Status)
	assert.Equal(t, int32(2), w.calls.Load())
}

func TestCache_Get_ImageFailureRetries(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, _ := newTestCache(t, cat, w, WithMaxAttempts(2))

	cat.EXPECT().Search(gomock.Any(), "Frieren").Return(&catalog.Anime{ImageURL: "https://cdn.example/f.jpg"}, nil).Times(2)
	cat.EXPECT().Image(gomock.Any(), "https://cdn.example/f.jpg").Return(nil, apperr.Transport("image", errors.New("reset"))).Times(2)

	e := c.Get(ctx, "Frieren")
	assert.True(t, e.Unavailable())
}

// sidecarFailingIO fails sidecar writes while fail is set
type sidecarFailingIO struct {
	mio.MediaFileSystem
	fail atomic.Bool
}

func (f *sidecarFailingIO) WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	if f.fail.Load() && filepath.Ext(name) == ".json" {
		return errors.New("disk full")
	}
	return f.MediaFileSystem.WriteFileAtomic(name, data, perm)
}

func TestCache_Get_SidecarFailureLeavesNoImage(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	fileIO := &sidecarFailingIO{}
	fileIO.fail.Store(true)
	c, dir := newTestCache(t, cat, w, WithFileIO(fileIO))

	cat.EXPECT().Search(gomock.Any(), "Frieren").Return(&catalog.Anime{
		ImageURL: "https://cdn.example/frieren.jpg",
		Status:   "Currently Airing",
	}, nil).Times(2)
	cat.EXPECT().Image(gomock.Any(), "https://cdn.example/frieren.jpg").Return([]byte("jpeg"), nil).Times(2)

	e := c.Get(ctx, "Frieren - 05")
	assert.True(t, e.Unavailable())

	_, err := os.Stat(filepath.Join(dir, "Frieren.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, ok := c.Peek(ctx, "Frieren - 05")
	assert.False(t, ok)

	fileIO.fail.Store(false)
	e = c.Get(ctx, "Frieren - 05")
	assert.False(t, e.Unavailable())
	assert.Equal(t, StatusOngoing, e.Status)
	assert.Equal(t, int32(2), w.calls.Load())
}

func TestCache_Get_NotFoundIsTerminal(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, _ := newTestCache(t, cat, w)

	cat.EXPECT().Search(gomock.Any(), "Nothing").Return(nil, apperr.NotFound("search", nil)).Times(1)

	e := c.Get(ctx, "Nothing - 01")
	assert.Equal(t, Sentinel("Nothing"), e)
	assert.Equal(t, int32(1), w.calls.Load())
}

func TestCache_Get_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, _ := newTestCache(t, cat, w)

	e := c.Get(ctx, "Frieren - 01")
	assert.True(t, e.Unavailable())
}

func TestCache_Get_EmptyKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, _ := newTestCache(t, cat, w)

	e := c.Get(context.Background(), "[SubsPlease]")
	assert.True(t, e.Unavailable())
	assert.Zero(t, w.calls.Load())
}

func TestCache_Get_Backoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, _ := newTestCache(t, cat, w, WithBackoff(20*time.Millisecond))

	cat.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, apperr.Transport("search", errors.New("boom"))).Times(3)

	start := time.Now()
	c.Get(context.Background(), "Frieren")
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestCache_Get_ConcurrentSingleLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, _ := newTestCache(t, cat, w)

	release := make(chan struct{})
	cat.EXPECT().Search(gomock.Any(), "Frieren").DoAndReturn(func(context.Context, string) (*catalog.Anime, error) {
		<-release
		return &catalog.Anime{Status: "Currently Airing"}, nil
	}).MaxTimes(2)

	var wg sync.WaitGroup
	results := make([]Entry, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Get(context.Background(), "Frieren - 0"+string(rune('1'+i)))
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, StatusOngoing, r.Status)
	}
	assert.LessOrEqual(t, w.calls.Load(), int32(2))
}

func TestCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	w := &countingWaiter{}
	c, dir := newTestCache(t, cat, w)

	cat.EXPECT().Search(gomock.Any(), "Frieren").Return(&catalog.Anime{ImageURL: "u", Status: "Finished Airing"}, nil).Times(2)
	cat.EXPECT().Image(gomock.Any(), "u").Return([]byte("x"), nil).Times(2)

	c.Get(ctx, "Frieren")
	require.NoError(t, c.Invalidate(ctx, "Frieren - 01"))

	_, err := os.Stat(filepath.Join(dir, "Frieren.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, ok := c.Peek(ctx, "Frieren")
	assert.False(t, ok)

	c.Get(ctx, "Frieren")
	assert.Equal(t, int32(2), w.calls.Load())

	assert.NoError(t, c.Invalidate(ctx, "Never Cached"))
}

func TestStatusFromCatalog(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"Currently Airing", StatusOngoing},
		{"Not yet aired", StatusOngoing},
		{"Finished Airing", StatusEnded},
		{"", StatusUnknown},
		{"Hiatus", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromCatalog(tt.in))
		})
	}
}
