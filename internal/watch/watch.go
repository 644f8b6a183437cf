// Package watch reloads the dataset when its file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/gommon/log"

	"salesdash/internal/engine"
)

// LoadFunc reads the dataset.
type LoadFunc func(path string) (*engine.ColumnStore, error)

// ReplaceFunc receives every successfully reloaded table.
type ReplaceFunc func(*engine.ColumnStore) error

// Watcher reloads one dataset file. Spreadsheet tools usually save by writing
// a temp file and renaming it, so the parent directory is watched and events
// are filtered by name.
type Watcher struct {
	Path    string
	Load    LoadFunc
	Replace ReplaceFunc
	// Debounce coalesces the burst of events a single save produces.
	Debounce time.Duration
}

// Run blocks until ctx is done. Reload errors are logged and the previous
// table stays active.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	abs, err := filepath.Abs(w.Path)
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	log.Infof("watching %s for changes", abs)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watcher error: %v", err)
		case <-timer.C:
			w.reload(abs)
		}
	}
}

func (w *Watcher) reload(path string) {
	store, err := w.Load(path)
	if err != nil {
		log.Errorf("reloading %s: %v (keeping previous data)", path, err)
		return
	}
	if err := w.Replace(store); err != nil {
		log.Errorf("replacing dataset: %v (keeping previous data)", err)
		return
	}
	log.Infof("reloaded %s: %d rows", path, store.Len())
}
