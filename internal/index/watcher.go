package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/decisionlog/internal/loader"
)

// ChangeCallback is called once per debounced burst of document changes with
// the absolute paths that changed.
type ChangeCallback func(ctx context.Context, paths []string)

// Watch starts an fsnotify watcher on the given category directories and
// calls cb after each burst of changes to document files until ctx is
// cancelled. Index documents and "_" templates are ignored, so files written
// by a regeneration pass do not trigger another one.
//
// Directories that do not exist yet are watched once they appear in their
// parent directory.
func Watch(ctx context.Context, dirs []string, debounce time.Duration, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	wanted := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		wanted[filepath.Clean(dir)] = struct{}{}
		if err := addDir(w, dir); err != nil {
			return err
		}
	}

	logger.Info("watcher: started", slog.Any("dirs", dirs))

	var timer *time.Timer
	var timerCh <-chan time.Time
	pending := make(map[string]struct{})

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = make(map[string]struct{})
			logger.Debug("watcher: change burst", slog.Int("files", len(paths)))
			if cb != nil {
				cb(ctx, paths)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if _, ok := wanted[filepath.Clean(ev.Name)]; ok {
					if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
						if addErr := w.Add(ev.Name); addErr != nil {
							logger.Warn("watcher: add dir failed",
								slog.String("path", ev.Name),
								slog.String("error", addErr.Error()))
						}
						pending[ev.Name] = struct{}{}
						schedule()
						continue
					}
				}
			}

			if _, ok := wanted[filepath.Dir(filepath.Clean(ev.Name))]; !ok {
				continue
			}
			if !loader.IsCandidate(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: event", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			pending[ev.Name] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDir watches dir, or its parent when dir does not exist yet.
func addDir(w *fsnotify.Watcher, dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return w.Add(dir)
	}
	return w.Add(filepath.Dir(dir))
}
