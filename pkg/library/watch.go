package library

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kasuboski/simulcast/pkg/logger"
	"go.uber.org/zap"
)

// Watch calls onChange after the folder has been quiet for debounce. It blocks until ctx is done.
// Only the top level folder is watched.
func (f *Folder) Watch(ctx context.Context, debounce time.Duration, onChange func()) error {
	log := logger.FromCtx(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(f.dir); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			log.Debugw("download folder changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("download folder watch error", zap.Error(err))

		case <-timer.C:
			onChange()
		}
	}
}
