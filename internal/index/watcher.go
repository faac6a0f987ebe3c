package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/halloran/medkit/internal/store"
)

// EventCallback is called after a watcher-driven index rebuild.
// kind is currently always "store.reloaded".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the content store file and re-syncs the
// index whenever the file changes, until ctx is cancelled. It calls cb (if
// non-nil) after each successful rebuild.
//
// The store is replaced atomically via rename, so the watcher observes the
// parent directory and filters events by file name. Rapid event bursts are
// debounced into a single sync.
func Watch(ctx context.Context, db *DB, st store.Store, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	path := st.Path()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("path", path))

	// syncTimer debounces bursts of write/rename events into one rebuild.
	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(200 * time.Millisecond)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			if err := Sync(db, st, logger); err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
				continue
			}
			if cb != nil {
				cb("store.reloaded", path)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: store changed", slog.String("op", ev.Op.String()))
			scheduleSync()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
