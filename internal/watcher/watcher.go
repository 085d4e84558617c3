// Package watcher triggers wholesale rebuilds when watched source trees
// change. Events are debounced; a burst of writes yields one signal.
// The artifact stays single-snapshot, so there is no incremental patching
// to do; the signal simply means "rebuild everything".
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/girijashankarj/garry-rag-repo-harness/internal/source"
)

// DefaultDebounceWindow coalesces rapid file events.
const DefaultDebounceWindow = 500 * time.Millisecond

// Watcher watches one directory tree recursively.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	excludes []string
	window   time.Duration
	changed  chan struct{}
	logger   *slog.Logger
}

// New creates a Watcher over root. Excluded and hidden directories are
// not watched.
func New(root string, excludes []string, window time.Duration, logger *slog.Logger) (*Watcher, error) {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		root:     abs,
		excludes: excludes,
		window:   window,
		changed:  make(chan struct{}, 1),
		logger:   logger,
	}

	if err := w.addTree(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Changed signals one debounced change batch. The channel is buffered;
// signals arriving while a rebuild is in flight coalesce into one.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Run processes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				// New directories must be watched explicitly;
				// fsnotify does not recurse.
				if err := w.addTree(event.Name); err != nil {
					w.logger.Warn("watch_add_failed",
						slog.String("path", event.Name),
						slog.String("error", err.Error()))
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.window)
				timerC = timer.C
			} else {
				timer.Reset(w.window)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.changed <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// addTree watches path and every non-ignored directory below it.
// Non-directory paths are ignored; their parent is already watched.
func (w *Watcher) addTree(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != w.root && w.ignored(p) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

// ignored reports whether path falls under a hidden or excluded
// directory.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return source.Excluded(rel, w.excludes) || source.Excluded(rel+"/x", w.excludes)
}
