package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// watchFile calls onChange once, then again after every change to path and
// every value received on rerun, until ctx is canceled. The parent directory
// is watched so that editors which save by rename are still seen. Errors
// from onChange are logged and watching continues. rerun may be nil.
func watchFile(
	ctx context.Context, path string, logger *slog.Logger,
	rerun <-chan os.Signal, onChange func(context.Context) error,
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	run := func() {
		if err := onChange(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("solve failed, waiting for next change",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}

	run()

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			logger.Debug("chart changed", slog.String("path", path), slog.String("op", ev.Op.String()))
			pending = time.After(watchDebounce)

		case <-pending:
			pending = nil
			run()

		case sig := <-rerun:
			logger.Info("re-solve requested", slog.String("signal", sig.String()))
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warn("file watcher error", slog.String("error", err.Error()))
		}
	}
}
