// Package watch re-runs the pipeline when the static root changes.
//
// Events are debounced so a burst of writes (an asset rebuild dropping many
// files) triggers one pipeline pass, not one per file. Pipeline outputs —
// compressed siblings, digest-carrying copies, the manifest — are filtered
// out of the event stream so a pass does not trigger the next one.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"assetpress/internal/fingerprint"
	"assetpress/internal/logging"
	"assetpress/internal/manifest"
)

// DefaultDebounce is the quiet period after the last relevant event before a
// pipeline pass starts.
const DefaultDebounce = 500 * time.Millisecond

// Watcher triggers a callback when files under root change.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func(context.Context) error
	logger   *slog.Logger
}

// New builds a watcher over root. onChange runs after each debounced batch of
// changes; its error is logged, not fatal, so one bad pass does not stop the
// watch. A non-positive debounce falls back to DefaultDebounce.
func New(root string, debounce time.Duration, onChange func(context.Context) error, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		logger:   logging.Default(logger).With("component", "watch"),
	}
}

// Run watches until ctx is cancelled. The root and every subdirectory are
// watched; directories created later are added as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := addDirs(watcher, w.root); err != nil {
		return err
	}

	w.logger.Info("watching for changes", "root", w.root, "debounce", w.debounce)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				// New directories need their own watch before anything
				// inside them can be seen.
				if err := addDirs(watcher, event.Name); err == nil {
					w.logger.Debug("watching new path", "path", event.Name)
				}
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				// A tick may already be buffered in the channel. Drain it
				// before resetting or the stale tick would cut the new
				// debounce window short.
				if !timer.Stop() {
					select {
					case <-timerCh:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timerCh:
			timer = nil
			timerCh = nil
			if err := w.onChange(ctx); err != nil {
				w.logger.Warn("change handler failed", "error", err)
			}
		}
	}
}

// relevant filters out pipeline outputs and noise events.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	base := filepath.Base(event.Name)
	if base == manifest.DefaultName {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".gz", ".br", ".tmp":
		return false
	}
	return !fingerprint.CarriesDigest(filepath.ToSlash(base))
}

// addDirs registers path and, if it is a directory, every directory below it.
func addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
