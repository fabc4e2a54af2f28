// Package reconcile joins the download folder with the torrent session into per episode download records.
package reconcile

import (
	"context"
	"errors"
	"math"
	"path"
	"strings"

	"github.com/kasuboski/simulcast/pkg/download"
	"github.com/kasuboski/simulcast/pkg/library"
	"github.com/kasuboski/simulcast/pkg/logger"
	"github.com/kasuboski/simulcast/pkg/metadata"
	"github.com/kasuboski/simulcast/pkg/title"
	"github.com/oapi-codegen/nullable"
	"go.uber.org/zap"
)

type State string

const (
	StateDownloading State = "Downloading"
	StateDownloaded  State = "Downloaded"
	StateRemoved     State = "Removed"
)

// Record is the derived state of one downloaded file. It is never persisted.
type Record struct {
	Filename     string                 `json:"filename"`
	Series       string                 `json:"series"`
	Episode      string                 `json:"episode"`
	Progress     nullable.Nullable[int] `json:"progress"`
	State        State                  `json:"state"`
	SeriesStatus metadata.Status        `json:"seriesStatus"`
	TorrentID    string                 `json:"torrentId,omitempty"`
}

// StatusSource provides series status without touching the network
type StatusSource interface {
	Peek(ctx context.Context, rawTitle string) (metadata.Entry, bool)
}

type Reconciler struct {
	normalizer title.Normalizer
	statuses   StatusSource
	library    library.Library
	client     download.Client
}

func New(normalizer title.Normalizer, statuses StatusSource, lib library.Library, client download.Client) *Reconciler {
	return &Reconciler{
		normalizer: normalizer,
		statuses:   statuses,
		library:    lib,
		client:     client,
	}
}

// Reconcile builds one record per file
func (r *Reconciler) Reconcile(ctx context.Context, files []string, torrents []download.Torrent) []Record {
	records := make([]Record, 0, len(files))
	for _, f := range files {
		rec := r.record(ctx, f)

		t, ok := match(f, torrents)
		switch {
		case !ok:
			rec.State = StateDownloaded
			rec.Progress = nullable.NewNullNullable[int]()
		case t.Done || t.Progress >= 1:
			rec.State = StateDownloaded
			rec.Progress = nullable.NewNullableWithValue(100)
			rec.TorrentID = t.ID
		default:
			rec.State = StateDownloading
			rec.Progress = nullable.NewNullableWithValue(percent(t.Progress))
			rec.TorrentID = t.ID
		}

		records = append(records, rec)
	}
	return records
}

// Delete removes filename from disk and purges its torrent. Both steps are always attempted.
func (r *Reconciler) Delete(ctx context.Context, filename string) (Record, error) {
	log := logger.FromCtx(ctx).With(zap.String("file", filename))
	rec := r.record(ctx, filename)
	rec.State = StateRemoved
	rec.Progress = nullable.NewNullNullable[int]()

	var errs []error
	if err := r.library.Remove(ctx, filename); err != nil {
		log.Warnw("failed to remove file", zap.Error(err))
		errs = append(errs, err)
	}

	torrents, err := r.client.List(ctx)
	if err != nil {
		log.Warnw("failed to list torrents", zap.Error(err))
		errs = append(errs, err)
		return rec, errors.Join(errs...)
	}

	if t, ok := match(filename, torrents); ok {
		rec.TorrentID = t.ID
		if err := r.client.Delete(ctx, t.ID, true); err != nil {
			log.Warnw("failed to purge torrent", zap.String("torrent", t.ID), zap.Error(err))
			errs = append(errs, err)
		} else {
			log.Infow("purged torrent", zap.String("torrent", t.ID))
		}
	}

	return rec, errors.Join(errs...)
}

func (r *Reconciler) record(ctx context.Context, filename string) Record {
	nt := r.normalizer.Normalize(title.TrimExt(path.Base(filename)))

	status := metadata.StatusUnknown
	if r.statuses != nil {
		if e, ok := r.statuses.Peek(ctx, nt.Series); ok {
			status = e.Status
		}
	}

	return Record{
		Filename:     filename,
		Series:       nt.Series,
		Episode:      nt.Episode,
		SeriesStatus: status,
	}
}

// match finds the first torrent whose content path contains filename
func match(filename string, torrents []download.Torrent) (download.Torrent, bool) {
	if filename == "" {
		return download.Torrent{}, false
	}
	for _, t := range torrents {
		if strings.Contains(t.ContentPath, filename) {
			return t, true
		}
	}
	return download.Torrent{}, false
}

func percent(p float64) int {
	v := int(math.Floor(p * 100))
	return min(max(v, 0), 100)
}
