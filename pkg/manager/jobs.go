package manager

import (
	"context"
	"time"

	"github.com/kasuboski/simulcast/config"
	"github.com/kasuboski/simulcast/pkg/logger"
	"github.com/kasuboski/simulcast/pkg/reconcile"
	"go.uber.org/zap"
)

// ClientHealthStatus is the value of a ClientHealth cycle
type ClientHealthStatus struct {
	Connected bool      `json:"connected"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Jobs are the periodic refresh cycles of the manager
func (m *Manager) Jobs(cfg config.Jobs) []Job {
	return []Job{
		{
			Type:     FeedPoll,
			Interval: cfg.FeedPoll,
			Run: func(ctx context.Context) (any, error) {
				return m.PollFeed(ctx)
			},
			Apply: func(ctx context.Context, value any) {
				if !cfg.AutoDownload {
					return
				}
				releases, _ := value.([]Release)
				if _, err := m.AutoAcquire(ctx, releases); err != nil {
					logger.FromCtx(ctx).Warnw("auto download incomplete", zap.Error(err))
				}
			},
		},
		{
			Type:     ScheduleRefresh,
			Interval: cfg.ScheduleRefresh,
			Run: func(ctx context.Context) (any, error) {
				return m.Schedule(ctx)
			},
		},
		{
			Type:     DownloadsRefresh,
			Interval: cfg.DownloadsRefresh,
			Run: func(ctx context.Context) (any, error) {
				return m.ListDownloads(ctx)
			},
			Apply: func(ctx context.Context, value any) {
				records, _ := value.([]reconcile.Record)
				m.ObserveDownloads(ctx, records)
			},
		},
		{
			Type:     ClientHealth,
			Interval: cfg.ClientHealth,
			Run: func(ctx context.Context) (any, error) {
				err := m.CheckClient(ctx)
				return ClientHealthStatus{Connected: err == nil, CheckedAt: m.now()}, err
			},
		},
	}
}
