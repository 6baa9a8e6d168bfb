package history

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of writes (editors, atomic renames) into
// one reload.
const DefaultDebounce = 200 * time.Millisecond

// ChangeCallback receives the relative paths changed during one debounce
// window, sorted.
type ChangeCallback func(paths []string)

// Watch starts an fsnotify watcher on the directories holding the named data
// files (relative to root) and calls cb after each quiet period of debounce
// following a change to one of them. Other files, including temp files from
// atomic writes, are ignored. It returns when ctx is cancelled.
func Watch(ctx context.Context, root string, names []string, debounce time.Duration, logger *slog.Logger, cb ChangeCallback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := make(map[string]string, len(names)) // abs path → rel path
	dirs := map[string]bool{}
	for _, n := range names {
		if n == "" {
			continue
		}
		abs := filepath.Join(root, filepath.FromSlash(n))
		watched[abs] = n
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			logger.Warn("watcher: add dir failed", slog.String("path", d), slog.String("error", err.Error()))
		}
	}

	logger.Info("watcher: started", slog.String("root", root), slog.Int("files", len(watched)))

	var timer *time.Timer
	var fire <-chan time.Time
	pending := map[string]bool{}

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
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

		case <-fire:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = map[string]bool{}
			logger.Debug("watcher: change", slog.Any("paths", paths))
			if cb != nil {
				cb(paths)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, ok := watched[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending[rel] = true
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
