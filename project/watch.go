package project

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports module files that were created or written.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching dir and all its subdirectories.
func NewWatcher(dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	err = doublestar.GlobWalk(os.DirFS(dir), "**", func(path string, d fs.DirEntry) error {
		if !d.IsDir() {
			return nil
		}
		return w.Add(filepath.Join(dir, filepath.FromSlash(path)))
	})
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{dir: dir, watcher: w}, nil
}

// Run calls fn with the path of every changed module file until ctx is
// done or the watcher fails. The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, fn func(path string)) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.dir, err)
		case e, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if e.Has(fsnotify.Create) {
				if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
					w.watcher.Add(e.Name)
					continue
				}
			}
			if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
				if Match(w.dir, e.Name) {
					fn(e.Name)
				}
			}
		}
	}
}
