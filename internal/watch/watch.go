// Package watch re-runs the batch build when source files change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last change before a rebuild
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc performs one full build
type RebuildFunc func() error

// Watcher watches source directories and triggers rebuilds.
// Changes are debounced; rebuilds run one at a time on the Run goroutine.
type Watcher struct {
	// Debounce must be set before Run
	Debounce time.Duration

	watcher *fsnotify.Watcher
	rebuild RebuildFunc
	ignored map[string]bool
	logger  *zap.Logger
}

// New creates a watcher over dirs. Directories that cannot be watched are
// logged and skipped.
func New(dirs []string, rebuild RebuildFunc, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		Debounce: DefaultDebounce,
		watcher:  fw,
		rebuild:  rebuild,
		ignored:  map[string]bool{},
		logger:   logger,
	}

	added := 0
	seen := map[string]bool{}
	for _, d := range dirs {
		d = filepath.Clean(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		if err := fw.Add(d); err != nil {
			logger.Warn("cannot watch directory", zap.String("path", d), zap.Error(err))
			continue
		}
		added++
	}
	if added == 0 {
		fw.Close()
		return nil, fmt.Errorf("watch sources: no watchable directory in %v", dirs)
	}
	return w, nil
}

// Ignore drops events for path, such as the generated index itself
func (w *Watcher) Ignore(path string) {
	w.ignored[filepath.Clean(path)] = true
}

// Run blocks until ctx is done, rebuilding after each burst of changes
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.Debounce)
	timer.Stop()
	pending := false

	w.logger.Info("watching sources", zap.Duration("debounce", w.Debounce))
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("source changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))

			// reset the quiet period on each change
			timer.Reset(w.Debounce)
			pending = true

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := w.rebuild(); err != nil {
				w.logger.Error("rebuild failed", zap.Error(err))
				continue
			}
			w.logger.Info("rebuilt")

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(e fsnotify.Event) bool {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Remove) && !e.Has(fsnotify.Rename) {
		return false
	}
	return !w.ignored[filepath.Clean(e.Name)]
}
