package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads lib whenever its file changes and calls onReload after each
// successful reload. Editors often replace files rather than write them, so
// the parent directory is watched. Watch blocks until ctx is done.
func Watch(ctx context.Context, lib *Library, onReload func(), logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	path, err := filepath.Abs(lib.Path())
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	// Coalesce bursts of events from a single save.
	const settle = 100 * time.Millisecond
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				pending = time.After(settle)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("library watch error", zap.Error(err))

		case <-pending:
			pending = nil
			if err := lib.Reload(); err != nil {
				logger.Warn("library reload failed", zap.Error(err))
				continue
			}
			logger.Info("library reloaded", zap.String("path", path))
			if onReload != nil {
				onReload()
			}
		}
	}
}
