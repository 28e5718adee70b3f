package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchIgnoredDirs are directory names never worth a recursive watch: VCS
// metadata and common dependency/build output trees.
var watchIgnoredDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
}

// Watcher triggers a callback after a debounced burst of filesystem changes
// under a set of root paths, for the analyze command's optional --watch mode.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
}

// NewWatcher creates a Watcher that waits debounce after the last observed
// event before firing its callback, coalescing rapid successive writes
// (editors that save in multiple steps, mass find-and-replace) into one run.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{fsWatcher: fw, debounce: debounce}, nil
}

// AddPaths registers watches on every directory reachable from roots,
// descending into subdirectories and skipping watchIgnoredDirs. A root that
// is itself a file has its parent directory watched instead, since fsnotify
// only watches directories.
func (w *Watcher) AddPaths(roots []string) error {
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			if err := w.fsWatcher.Add(filepath.Dir(root)); err != nil {
				return fmt.Errorf("watching %s: %w", root, err)
			}
			continue
		}
		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if !info.IsDir() {
				return nil
			}
			if watchIgnoredDirs[info.Name()] {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return nil
}

// Close releases the underlying OS watch handles.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// Run blocks, invoking onChange once per debounced burst of filesystem
// events, until ctx is cancelled. onEvent, if non-nil, is called for every
// raw event before debouncing, useful for logging which path changed.
func (w *Watcher) Run(ctx context.Context, onChange func(), onEvent func(fsnotify.Event)) error {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if onEvent != nil {
				onEvent(event)
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, onChange)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			_ = err // surfaced errors aren't fatal to the watch loop
		}
	}
}
