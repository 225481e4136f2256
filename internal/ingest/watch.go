package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long a note must be quiet before it is re-ingested.
const DefaultDebounce = 500 * time.Millisecond

type fileIngester interface {
	IngestFile(ctx context.Context, path string) (Stats, error)
}

// Watcher re-ingests notes when they are written or created.
type Watcher struct {
	loader   *VaultLoader
	ingester fileIngester
	debounce time.Duration
	tick     time.Duration
	pending  map[string]time.Time
	logger   logrus.FieldLogger
}

// NewWatcher creates a watcher over the loader's vault.
func NewWatcher(loader *VaultLoader, ingester fileIngester, debounce time.Duration, logger logrus.FieldLogger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	tick := debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	return &Watcher{
		loader:   loader,
		ingester: ingester,
		debounce: debounce,
		tick:     tick,
		pending:  make(map[string]time.Time),
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. Ingest failures are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addRecursive(fsw, w.loader.Root()); err != nil {
		return err
	}
	w.logger.WithField("vault", w.loader.Root()).Info("watching for note changes")

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("watcher error")

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) handle(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	rel, err := w.loader.relative(event.Name)
	if err != nil {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.loader.Accept(rel, true) {
				if err := w.addRecursive(fsw, event.Name); err != nil {
					w.logger.WithError(err).WithField("dir", rel).Warn("failed to watch new directory")
				}
			}
			return
		}
	}

	if w.loader.Accept(rel, false) {
		w.pending[event.Name] = time.Now()
	}
}

// flush re-ingests every note whose last change is older than the debounce window.
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	for path, changed := range w.pending {
		if now.Sub(changed) >= w.debounce {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)

	for _, path := range ready {
		delete(w.pending, path)
		if _, err := w.ingester.IngestFile(ctx, path); err != nil {
			w.logger.WithError(err).WithField("path", path).Error("re-ingest failed")
		}
	}
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.loader.Root() {
			rel, relErr := w.loader.relative(path)
			if relErr != nil || !w.loader.Accept(rel, true) {
				return filepath.SkipDir
			}
		}
		if err := fsw.Add(path); err != nil {
			if path == w.loader.Root() {
				return fmt.Errorf("watching vault: %w", err)
			}
			w.logger.WithError(err).WithField("dir", path).Debug("skipping directory")
		}
		return nil
	})
}
